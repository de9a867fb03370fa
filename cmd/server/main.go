package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devevents/config"
	_ "devevents/docs"
	"devevents/internal/adapters/email"
	"devevents/internal/adapters/storage"
	"devevents/internal/adapters/ticket"
	deliveryhttp "devevents/internal/delivery/http"
	"devevents/internal/delivery/http/controllers"
	"devevents/internal/domain"
	"devevents/internal/services"
)

const (
	shutdownTimeout   = 15 * time.Second
	bootstrapInterval = 10 * time.Second
)

// @title DevEvents API
// @version 1.0
// @description Lists developer events and ingests events and bookings.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := newStore(cfg, logger)
	if err := store.bootstrap(ctx); err != nil {
		if errors.Is(err, domain.ErrMissingDatabaseURI) {
			logger.Error("DATABASE_URL is not set")
			os.Exit(1)
		}
		logger.Warn("storage bootstrap failed, retrying in background", "err", err)
		go retryBootstrap(ctx, store, logger)
	}

	tickets, err := ticket.NewJWTIssuer(cfg.Ticket.Secret, cfg.Ticket.TTL)
	if err != nil {
		logger.Error("ticket issuer", "err", err)
		os.Exit(1)
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.AWS.Region,
			AccessKeyID:        cfg.AWS.AccessKeyID,
			SecretAccessKey:    cfg.AWS.SecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Error("mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	var images domain.ImageStore
	if cfg.AWS.ImageBucket != "" {
		images, err = storage.NewS3ImageStore(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Bucket:          cfg.AWS.ImageBucket,
		}, logger)
		if err != nil {
			logger.Error("image store", "err", err)
			os.Exit(1)
		}
	} else {
		logger.Info("S3_IMAGE_BUCKET not set, image uploads disabled")
	}

	eventService := services.NewEventService(store.events, logger, cfg.RequestTimeout)
	bookingService := services.NewBookingService(store.bookings, store.events, tickets, emailService, logger, cfg.RequestTimeout)

	mux := deliveryhttp.NewRouter(
		controllers.NewEventController(logger, eventService, images),
		controllers.NewBookingController(logger, bookingService),
		controllers.NewHealthController(logger, store.ready),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deliveryhttp.NewHandler(mux, logger, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "backend", store.backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
	if err := store.close(shutdownCtx); err != nil {
		logger.Error("close database", "err", err)
	}
	logger.Info("server stopped")
}

func retryBootstrap(ctx context.Context, s *store, logger *slog.Logger) {
	ticker := time.NewTicker(bootstrapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.bootstrap(ctx); err != nil {
				logger.Warn("storage bootstrap failed", "err", err)
				continue
			}
			logger.Info("storage bootstrap complete")
			return
		}
	}
}
