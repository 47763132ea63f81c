package authorization

import (
	"log/slog"
	"time"

	httpadapter "campus/contexts/identity-access/authorization-service/adapters/http"
	"campus/contexts/identity-access/authorization-service/adapters/memory"
	"campus/contexts/identity-access/authorization-service/application/queries"
	"campus/contexts/identity-access/authorization-service/ports"
)

// Module is the authorization-service composition root exposed to runtime wiring.
type Module struct {
	Handler   httpadapter.Handler
	Authorize queries.AuthorizeUseCase
	Store     *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Organizations ports.OrganizationStore
	Principals    ports.PrincipalStore
	Clock         ports.Clock
	StoreTimeout  time.Duration
	Logger        *slog.Logger
}

// NewModule wires the decision use-cases and transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	authorize := queries.AuthorizeUseCase{
		Organizations: deps.Organizations,
		Clock:         deps.Clock,
		StoreTimeout:  deps.StoreTimeout,
		Logger:        deps.Logger,
	}
	manageResource := queries.CanManageResourceUseCase{
		Authorize: authorize,
	}

	handler := httpadapter.Handler{
		Principals:     deps.Principals,
		Authorize:      authorize,
		ManageResource: manageResource,
		Logger:         deps.Logger,
	}

	return Module{
		Handler:   handler,
		Authorize: authorize,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Organizations: store,
		Principals:    store,
		Clock:         store,
		StoreTimeout:  2 * time.Second,
		Logger:        logger,
	})
	module.Store = store
	return module
}
