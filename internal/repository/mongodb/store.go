// Package mongodb stores events and bookings in MongoDB.
package mongodb

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devevents/internal/database"
	"devevents/internal/domain"
)

const (
	eventsCollection   = "events"
	bookingsCollection = "bookings"
)

// store resolves collections through the shared connection cache so every
// operation waits for, or reuses, the single client.
type store struct {
	clients database.Provider[*mongo.Client]
	dbName  string
}

func (s *store) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	client, err := s.clients.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(s.dbName).Collection(name), nil
}

// EnsureIndexes creates the unique slug index and the booking lookup index.
// It is idempotent.
func EnsureIndexes(ctx context.Context, clients database.Provider[*mongo.Client], dbName string) error {
	s := &store{clients: clients, dbName: dbName}
	events, err := s.collection(ctx, eventsCollection)
	if err != nil {
		return err
	}
	_, err = events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
	if err != nil {
		return err
	}
	bookings, err := s.collection(ctx, bookingsCollection)
	if err != nil {
		return err
	}
	_, err = bookings.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "eventId", Value: 1}}})
	return err
}

// dupKeyPattern pulls the first field and value out of an E11000 message,
// e.g. `dup key: { slug: "cloud-next-2026" }`.
var dupKeyPattern = regexp.MustCompile(`dup key: \{ ?"?([\w.]+)"?: "?((?:[^"\\]|\\.)*?)"? ?\}`)

// indexFieldPattern extracts the field from an index name like `slug_1` or
// the legacy `db.coll.$slug_1`.
var indexFieldPattern = regexp.MustCompile(`index: (?:[\w.]*\$)?([\w.]+?)_-?1`)

// mapWriteError converts a duplicate-key error into *domain.ConflictError.
func mapWriteError(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	msg := duplicateKeyMessage(err)
	if m := dupKeyPattern.FindStringSubmatch(msg); m != nil {
		return domain.NewConflictError(m[1], m[2], err)
	}
	if m := indexFieldPattern.FindStringSubmatch(msg); m != nil {
		return domain.NewConflictError(m[1], "", err)
	}
	return domain.NewConflictError("unknown", "", err)
}

func duplicateKeyMessage(err error) string {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 || e.Code == 12582 {
				return e.Message
			}
		}
	}
	return err.Error()
}
