package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/api"
	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/auth"
	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/classifier"
	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/config"
	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/domain"
	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/outbox"
	persistence "github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/persistence/postgres"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "worktracker-api").Logger()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := persistence.RunMigrations(cfg.PostgresURL); err != nil {
		logger.Fatal().Err(err).Msg("database migration failed")
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers, logger)
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(pool, producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize, logger)
	go dispatcher.Start(ctx)

	labeler := classifier.NewPerplexityClient(cfg.AIEndpoint, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout, logger)
	samples := classifier.New(classifier.Config{
		WorkApps:    cfg.WorkApps,
		PrivateApps: cfg.PrivateApps,
		BrowserApps: cfg.BrowserApps,
	}, labeler, logger)

	ingest := domain.NewIngestService(repo, samples, cfg.DefaultSampleDuration, cfg.ClassifyConcurrency, logger)
	users := domain.NewUserService(repo, auth.BcryptHasher{})
	reports := domain.NewReportService(repo)

	authConfig := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TokenTTL: cfg.TokenTTL}
	limiter := api.NewIngestLimiter(cfg.IngestRatePerMin, cfg.IngestBurst)

	handler := api.NewHandler(ingest, users, reports, authConfig, cfg.DaemonAPIKey, limiter)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	requestLog := api.RequestLogger(logger)
	authMiddleware := auth.NewMiddleware(authConfig, api.AuthSkipper)

	server := &http.Server{
		Addr:         cfg.HTTPAddress,
		Handler:      authMiddleware.Wrap(requestLog(mux)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress).Msg("worktracker api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	dispatcher.Wait()
}
