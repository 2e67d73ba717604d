package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"startiq/internal/config"
	"startiq/internal/core"
	"startiq/internal/llm"
	"startiq/internal/logger"
	"startiq/internal/observability"
	"startiq/internal/persistence"
	"startiq/internal/services"
	"startiq/internal/store"
)

const metricsNamespace = "startiq"

// app holds everything a command needs to run the pipeline.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *persistence.StoreDB
	services *services.Services
	metrics  *observability.Collector
	posthog  *observability.PostHogClient
}

// newApp loads configuration and wires the store, the completion stack and
// the services. One-shot commands need a store that outlives the process.
func newApp(ctx context.Context, oneShot bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if oneShot {
		if err := requirePersistentStore(cfg.Store); err != nil {
			return nil, err
		}
	}

	log := logger.Setup(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if cfg.App.Debug {
		log = logger.Setup(logger.Options{Level: "debug", Format: cfg.Logging.Format})
	}

	metrics := observability.NewCollector(metricsNamespace)

	posthog, err := observability.NewPostHogClient(cfg.PostHog)
	if err != nil {
		log.Warn("PostHog disabled", "error", err.Error())
		posthog = nil
	}

	docs, err := store.Open(ctx, cfg.Store, core.SystemClock{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	log.Info("Document store ready", "backend", docs.Backend())

	completer, err := llm.New(ctx, cfg, metrics, posthog)
	if err != nil {
		_ = docs.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	db := persistence.New(docs)
	svc := services.New(services.Dependencies{
		DB:           db,
		LLM:          completer,
		Options:      llm.OptionsFromConfig(cfg.AI),
		Metrics:      metrics,
		PostHog:      posthog,
		Logger:       log,
		SingleFlight: cfg.Cache.SingleFlight,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		services: svc,
		metrics:  metrics,
		posthog:  posthog,
	}, nil
}

// requirePersistentStore rejects the memory backend, whose contents are lost
// when a one-shot command exits.
func requirePersistentStore(cfg config.Store) error {
	if cfg.Backend == config.BackendMemory {
		return fmt.Errorf("the memory store does not persist between commands; set store.backend to sqlite, postgres or redis")
	}
	return nil
}

// Close flushes analytics and closes the store.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.posthog.Shutdown(ctx); err != nil {
		a.log.Warn("Failed to flush PostHog events", "error", err.Error())
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn("Failed to close store", "error", err.Error())
	}
}
