package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/welfare-metrics-service/internal/adapter/datagov"
	"github.com/couchcryptid/welfare-metrics-service/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/welfare-metrics-service/internal/adapter/kafka"
	"github.com/couchcryptid/welfare-metrics-service/internal/adapter/memory"
	"github.com/couchcryptid/welfare-metrics-service/internal/adapter/postgres"
	"github.com/couchcryptid/welfare-metrics-service/internal/config"
	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
	"github.com/couchcryptid/welfare-metrics-service/internal/observability"
	"github.com/couchcryptid/welfare-metrics-service/internal/ratelimit"
	"github.com/couchcryptid/welfare-metrics-service/internal/resolver"
)

func main() {
	_ = godotenv.Load() // best effort; env vars win over .env

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Persistent store is optional: without DATABASE_URL the metrics cache
	// runs in memory and district lookups degrade.
	var (
		districts domain.DistrictStore
		cache     domain.MetricsCache
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Error("database unavailable, starting degraded", "error", err)
			cache = memory.NewMetricsCache()
		} else {
			defer db.Close()
			districts = postgres.NewDistrictStore(db)
			cache = postgres.NewMetricsCache(db)
			logger.Info("postgres store connected")
		}
	} else {
		cache = memory.NewMetricsCache()
		logger.Info("no DATABASE_URL set, using in-memory cache")
	}

	provider := datagov.NewClient(cfg.DataGovAPIKey, cfg.DataGovBaseURL, cfg.DataGovTimeout, logger)
	limiter := ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow, nil)

	var events resolver.EventPublisher
	if cfg.KafkaEnabled {
		publisher := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic, logger)
		defer publisher.Close()
		events = publisher
		logger.Info("resolution event publishing enabled", "topic", cfg.KafkaEventsTopic)
	}

	res := resolver.New(resolver.Options{
		Districts:        districts,
		Cache:            cache,
		Provider:         provider,
		Limiter:          limiter,
		Normalizer:       domain.NewNormalizer(domain.DefaultFieldAliases(), domain.DefaultUnitScales()),
		Events:           events,
		CacheTTL:         cfg.CacheTTL,
		CoverageRadiusKm: cfg.CoverageRadiusKm,
		Logger:           logger,
		Metrics:          metrics,
	})

	handlers := httpapi.NewHandlers(res, districts, logger)
	srv := httpapi.NewServer(cfg.HTTPAddr, handlers, res, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
