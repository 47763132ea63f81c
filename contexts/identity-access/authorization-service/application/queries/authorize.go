package queries

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "campus/contexts/identity-access/authorization-service/application"
	"campus/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "campus/contexts/identity-access/authorization-service/domain/errors"
	"campus/contexts/identity-access/authorization-service/domain/services"
	"campus/contexts/identity-access/authorization-service/ports"
)

// AuthorizeQuery is the request model for one decision evaluation. The
// principal is already authenticated by the caller boundary; a nil principal
// denies as unauthenticated.
type AuthorizeQuery struct {
	Principal   *entities.Principal
	Requirement entities.Requirement
}

// AuthorizeUseCase resolves organization state for organization-scoped
// requirements and delegates to the pure decision engine. Store calls are
// bounded by StoreTimeout; a timed-out or failed lookup is a fault
// (ErrStoreUnavailable), never an implicit allow or deny.
type AuthorizeUseCase struct {
	Organizations ports.OrganizationStore
	Clock         ports.Clock
	StoreTimeout  time.Duration
	Logger        *slog.Logger
}

// Execute evaluates the requirement and returns a structured decision.
// The error path is reserved for faults: store unavailability and
// organization-state integrity violations.
func (u AuthorizeUseCase) Execute(ctx context.Context, query AuthorizeQuery) (entities.Decision, error) {
	logger := application.ResolveLogger(u.Logger)

	org, err := u.resolveOrganization(ctx, query)
	if err != nil {
		logger.Error("authorize organization lookup failed",
			"event", "authz_org_lookup_failed",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"user_id", principalID(query.Principal),
			"error", err.Error(),
		)
		return entities.Decision{}, err
	}
	if org != nil {
		if err := org.Validate(); err != nil {
			logger.Error("authorize aborted on integrity violation",
				"event", "authz_integrity_violation",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"org_id", org.OrgID,
				"error", err.Error(),
			)
			return entities.Decision{}, errors.Join(domainerrors.ErrIntegrityViolation, err)
		}
	}

	decision := services.Decide(query.Principal, query.Requirement, org)
	if !decision.Allowed {
		logger.Warn("authorize denied",
			"event", "authz_denied",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"user_id", principalID(query.Principal),
			"reason", string(decision.Reason),
			"missing_count", len(decision.Missing),
		)
	} else {
		logger.Debug("authorize allowed",
			"event", "authz_allowed",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"user_id", principalID(query.Principal),
		)
	}
	return decision, nil
}

// resolveOrganization fetches the principal's organization only when the
// requirement needs it and a role-check denial cannot settle the request
// first. A missing record returns nil so the engine can report
// organization_not_found deterministically.
func (u AuthorizeUseCase) resolveOrganization(ctx context.Context, query AuthorizeQuery) (*entities.Organization, error) {
	if !query.Requirement.OrganizationScoped() {
		return nil, nil
	}
	principal := query.Principal
	if principal == nil || principal.UserID == "" || principal.OrganizationID == "" {
		return nil, nil
	}
	if principal.Role == entities.RoleSuperAdmin {
		return nil, nil
	}
	if query.Requirement.ImpliesAdminRole() &&
		principal.Role != entities.RoleAdmin &&
		!requirementAdmitsRole(query.Requirement, principal.Role) {
		// The engine will deny on role grounds without consulting the store.
		return nil, nil
	}

	lookupCtx := ctx
	if u.StoreTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, u.StoreTimeout)
		defer cancel()
	}

	org, found, err := u.Organizations.FindOrganization(lookupCtx, principal.OrganizationID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domainerrors.ErrStoreUnavailable
		}
		return nil, errors.Join(domainerrors.ErrStoreUnavailable, err)
	}
	if !found {
		return nil, nil
	}
	return &org, nil
}

func requirementAdmitsRole(req entities.Requirement, role entities.Role) bool {
	if len(req.ExactRoles) == 0 {
		return false
	}
	for _, candidate := range req.ExactRoles {
		if candidate == role {
			return true
		}
	}
	return false
}

func principalID(principal *entities.Principal) string {
	if principal == nil {
		return ""
	}
	return principal.UserID
}
