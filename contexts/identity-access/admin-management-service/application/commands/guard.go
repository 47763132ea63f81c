package commands

import (
	"context"
	"errors"

	domainerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
	authzerrors "campus/contexts/identity-access/authorization-service/domain/errors"
	"campus/contexts/identity-access/authorization-service/domain/services"
)

// createSecondaryAdminRequirement gates provisioning: the actor must be the
// organization's primary admin holding canManageAdmins. superAdmin bypasses
// all of it inside the engine.
func createSecondaryAdminRequirement() authzentities.Requirement {
	return authzentities.Requirement{
		OrganizationMember: true,
		PrimaryAdminOnly:   true,
		Capabilities:       []authzentities.Capability{authzentities.CapabilityManageAdmins},
	}
}

// primaryAdminRequirement gates permission updates and removals. Primary
// standing alone suffices; the primary's own capability set is not consulted.
func primaryAdminRequirement() authzentities.Requirement {
	return authzentities.Requirement{
		OrganizationMember: true,
		PrimaryAdminOnly:   true,
	}
}

// authorizeActor loads the actor principal and the target organization, runs
// the decision engine, and returns the organization snapshot a command may
// mutate. Every denial comes back as a *DenialError; store trouble and broken
// organization state come back as faults.
//
// Commands call this once per write attempt so the authorization check and
// the version the write is conditioned on come from the same snapshot.
func (s Service) authorizeActor(
	ctx context.Context,
	actorUserID string,
	orgID string,
	requirement authzentities.Requirement,
) (authzentities.Organization, error) {
	var zero authzentities.Organization

	principal, err := s.loadPrincipal(ctx, actorUserID)
	if err != nil {
		return zero, err
	}

	lookupCtx, cancel := s.boundedCtx(ctx)
	org, found, err := s.Repository.GetOrganization(lookupCtx, orgID)
	cancel()
	if err != nil {
		return zero, storeFault(err)
	}

	var orgRef *authzentities.Organization
	if found {
		if err := org.Validate(); err != nil {
			return zero, errors.Join(domainerrors.ErrIntegrityViolation, err)
		}
		orgRef = &org
	}

	decision := services.Decide(principal, requirement, orgRef)
	if !decision.Allowed {
		return zero, authzerrors.NewDenialError(decision)
	}
	if orgRef == nil {
		// Only reachable for superAdmin actors, whose bypass never touches
		// organization state. The mutation itself still needs a real org.
		return zero, authzerrors.NewDenialError(authzentities.Deny(authzentities.ReasonOrganizationNotFound))
	}
	return org, nil
}

func (s Service) loadPrincipal(ctx context.Context, actorUserID string) (*authzentities.Principal, error) {
	lookupCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	principal, found, err := s.Repository.FindPrincipal(lookupCtx, actorUserID)
	if err != nil {
		return nil, storeFault(err)
	}
	if !found {
		// Unknown actors fall through to the engine as unauthenticated.
		return nil, nil
	}
	return &principal, nil
}
