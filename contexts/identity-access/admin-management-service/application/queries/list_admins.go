package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "campus/contexts/identity-access/admin-management-service/application"
	domainerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	"campus/contexts/identity-access/admin-management-service/ports"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
	authzerrors "campus/contexts/identity-access/authorization-service/domain/errors"
	"campus/contexts/identity-access/authorization-service/domain/services"
)

// Service hosts the read side: admin roster and audit trail listings.
// Reads are gated by the same decision engine as mutations, with weaker
// requirements (any admin of the organization may read the roster).
type Service struct {
	Repository   ports.Repository
	Clock        ports.Clock
	StoreTimeout time.Duration
	Logger       *slog.Logger
}

// ListAdmins returns the organization's admin roster in membership order.
func (s Service) ListAdmins(ctx context.Context, actorUserID string, orgID string) ([]authzentities.AdminMembership, error) {
	if strings.TrimSpace(actorUserID) == "" || strings.TrimSpace(orgID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	requirement := authzentities.Requirement{OrganizationMember: true}
	if err := s.authorizeViewer(ctx, actorUserID, orgID, requirement); err != nil {
		return nil, err
	}

	lookupCtx, cancel := s.boundedCtx(ctx)
	defer cancel()
	admins, err := s.Repository.ListAdmins(lookupCtx, orgID)
	if err != nil {
		return nil, storeFault(err)
	}

	application.ResolveLogger(s.Logger).Debug("admin roster listed",
		"event", "admin_mgmt_roster_listed",
		"module", "identity-access/admin-management-service",
		"layer", "application",
		"org_id", orgID,
		"count", len(admins),
	)
	return admins, nil
}

// authorizeViewer loads actor and organization state and runs the decision
// engine; denials surface as *DenialError for the transport layer to map.
func (s Service) authorizeViewer(
	ctx context.Context,
	actorUserID string,
	orgID string,
	requirement authzentities.Requirement,
) error {
	lookupCtx, cancel := s.boundedCtx(ctx)
	principal, found, err := s.Repository.FindPrincipal(lookupCtx, actorUserID)
	cancel()
	if err != nil {
		return storeFault(err)
	}
	var principalRef *authzentities.Principal
	if found {
		principalRef = &principal
	}

	lookupCtx, cancel = s.boundedCtx(ctx)
	org, orgFound, err := s.Repository.GetOrganization(lookupCtx, orgID)
	cancel()
	if err != nil {
		return storeFault(err)
	}
	var orgRef *authzentities.Organization
	if orgFound {
		if err := org.Validate(); err != nil {
			return errors.Join(domainerrors.ErrIntegrityViolation, err)
		}
		orgRef = &org
	}

	decision := services.Decide(principalRef, requirement, orgRef)
	if !decision.Allowed {
		return authzerrors.NewDenialError(decision)
	}
	if orgRef == nil {
		return authzerrors.NewDenialError(authzentities.Deny(authzentities.ReasonOrganizationNotFound))
	}
	return nil
}

func (s Service) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.StoreTimeout)
}

func storeFault(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domainerrors.ErrStoreUnavailable
	}
	return errors.Join(domainerrors.ErrStoreUnavailable, err)
}
