package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	adminmanagement "campus/contexts/identity-access/admin-management-service"
	"campus/contexts/identity-access/admin-management-service/adapters/credentials"
	admineventsadapter "campus/contexts/identity-access/admin-management-service/adapters/events"
	"campus/contexts/identity-access/admin-management-service/adapters/ids"
	"campus/contexts/identity-access/admin-management-service/adapters/notify"
	adminpostgres "campus/contexts/identity-access/admin-management-service/adapters/postgres"
	adminports "campus/contexts/identity-access/admin-management-service/ports"
	adminworkers "campus/contexts/identity-access/admin-management-service/application/workers"
	authorization "campus/contexts/identity-access/authorization-service"
	authzpostgres "campus/contexts/identity-access/authorization-service/adapters/postgres"
	"campus/internal/platform/config"
	"campus/internal/platform/db"
	"campus/internal/platform/httpserver"
	"campus/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  adminworkers.OutboxRelay
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	authzRepo := authzpostgres.NewRepository(pg.DB, logger)
	authzModule := authorization.NewModule(authorization.Dependencies{
		Organizations: authzRepo,
		Principals:    authzRepo,
		Clock:         authzpostgres.SystemClock{},
		StoreTimeout:  cfg.StoreTimeout,
		Logger:        logger,
	})

	adminRepo := adminpostgres.NewRepository(pg.DB, logger)
	bus := messaging.NewBus(logger)
	var notifier adminports.Notifier
	if cfg.EnableAdminNotifications {
		notifier = notify.LogNotifier{Logger: logger}
	}
	adminModule := adminmanagement.NewModule(adminmanagement.Dependencies{
		Repository:     adminRepo,
		Idempotency:    adminRepo,
		Outbox:         adminRepo,
		Credentials:    credentials.Issuer{},
		Notifier:       notifier,
		Publisher:      admineventsadapter.NewPublisher(bus, logger),
		Clock:          adminpostgres.SystemClock{},
		IDs:            ids.Generator{},
		StoreTimeout:   cfg.StoreTimeout,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Logger:         logger,
	})

	server := httpserver.New(authzModule, adminModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	adminRepo := adminpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: adminworkers.OutboxRelay{
			Outbox:    adminRepo,
			Publisher: admineventsadapter.NewPublisher(bus, logger),
			Clock:     adminpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"relay_enabled", w.relayEnabled,
	)

	for {
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
