package adminmanagement

import (
	"log/slog"
	"time"

	"campus/contexts/identity-access/admin-management-service/adapters/credentials"
	eventsadapter "campus/contexts/identity-access/admin-management-service/adapters/events"
	httpadapter "campus/contexts/identity-access/admin-management-service/adapters/http"
	"campus/contexts/identity-access/admin-management-service/adapters/memory"
	"campus/contexts/identity-access/admin-management-service/application/commands"
	"campus/contexts/identity-access/admin-management-service/application/queries"
	"campus/contexts/identity-access/admin-management-service/application/workers"
	"campus/contexts/identity-access/admin-management-service/ports"
)

// Module is the admin-management composition root exposed to runtime wiring.
type Module struct {
	Handler  httpadapter.Handler
	Commands commands.Service
	Queries  queries.Service
	Relay    workers.OutboxRelay
	Store    *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository     ports.Repository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxRepository
	Credentials    ports.CredentialIssuer
	Notifier       ports.Notifier
	Publisher      ports.PolicyChangedPublisher
	Clock          ports.Clock
	IDs            ports.IDGenerator
	StoreTimeout   time.Duration
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// NewModule wires the mutation commands, read queries, outbox relay, and
// transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	commandService := commands.Service{
		Repository:     deps.Repository,
		Idempotency:    deps.Idempotency,
		Credentials:    deps.Credentials,
		Notifier:       deps.Notifier,
		Clock:          deps.Clock,
		IDs:            deps.IDs,
		Logger:         deps.Logger,
		StoreTimeout:   deps.StoreTimeout,
		IdempotencyTTL: deps.IdempotencyTTL,
	}
	queryService := queries.Service{
		Repository:   deps.Repository,
		Clock:        deps.Clock,
		StoreTimeout: deps.StoreTimeout,
		Logger:       deps.Logger,
	}
	relay := workers.OutboxRelay{
		Outbox:    deps.Outbox,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	handler := httpadapter.Handler{
		Commands: commandService,
		Queries:  queryService,
		Logger:   deps.Logger,
	}

	return Module{
		Handler:  handler,
		Commands: commandService,
		Queries:  queryService,
		Relay:    relay,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. The credential issuer is real bcrypt at minimum cost.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:     store,
		Idempotency:    store,
		Outbox:         store,
		Credentials:    credentials.Issuer{Cost: 4},
		Notifier:       store,
		Publisher:      eventsadapter.NewPublisher(nil, logger),
		Clock:          store,
		IDs:            store,
		StoreTimeout:   2 * time.Second,
		IdempotencyTTL: 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
