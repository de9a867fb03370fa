package main

import (
	"context"
	"database/sql"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"devevents/config"
	"devevents/internal/database"
	"devevents/internal/domain"
	"devevents/internal/repository/mongodb"
	"devevents/internal/repository/postgres"
)

// store bundles the repositories of one backend with its connection cache.
type store struct {
	backend   string
	events    domain.EventRepository
	bookings  domain.BookingRepository
	bootstrap func(ctx context.Context) error
	ready     func(ctx context.Context) error
	close     func(ctx context.Context) error
}

// newStore picks the backend from the URI scheme. Nothing is dialed here;
// the cache connects on first use.
func newStore(cfg *config.Config, logger *slog.Logger) *store {
	if database.IsPostgresURI(cfg.DatabaseURL) {
		cache := database.NewCache[*sql.DB](cfg.DatabaseURL, database.DialPostgres(cfg.ServerSelectionTimeout), database.ClosePostgres, logger)
		return &store{
			backend:  "postgres",
			events:   postgres.NewEventRepository(cache),
			bookings: postgres.NewBookingRepository(cache),
			bootstrap: func(ctx context.Context) error {
				return postgres.EnsureSchema(ctx, cache)
			},
			ready: func(ctx context.Context) error {
				_, err := cache.EnsureConnected(ctx)
				return err
			},
			close: cache.Close,
		}
	}
	cache := database.NewCache[*mongo.Client](cfg.DatabaseURL, database.DialMongo(cfg.ServerSelectionTimeout), database.CloseMongo, logger)
	return &store{
		backend:  "mongodb",
		events:   mongodb.NewEventRepository(cache, cfg.DatabaseName),
		bookings: mongodb.NewBookingRepository(cache, cfg.DatabaseName),
		bootstrap: func(ctx context.Context) error {
			return mongodb.EnsureIndexes(ctx, cache, cfg.DatabaseName)
		},
		ready: func(ctx context.Context) error {
			_, err := cache.EnsureConnected(ctx)
			return err
		},
		close: cache.Close,
	}
}
