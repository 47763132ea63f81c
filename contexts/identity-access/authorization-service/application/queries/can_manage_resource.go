package queries

import (
	"context"
	"fmt"

	"campus/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "campus/contexts/identity-access/authorization-service/domain/errors"
)

// CanManageResourceQuery asks whether the principal may manage one resource
// kind inside its organization.
type CanManageResourceQuery struct {
	Principal *entities.Principal
	Kind      entities.ResourceKind
}

// CanManageResourceUseCase resolves the fixed resource-kind table and
// delegates to the authorization engine's capability check.
type CanManageResourceUseCase struct {
	Authorize AuthorizeUseCase
}

// Execute fails fast on an unknown kind: the kind set is closed, so a miss
// is a deployment/programming fault rather than a denial.
func (u CanManageResourceUseCase) Execute(ctx context.Context, query CanManageResourceQuery) (entities.Decision, error) {
	capability, ok := entities.CapabilityForResource(query.Kind)
	if !ok {
		return entities.Decision{}, fmt.Errorf("%w: %q", domainerrors.ErrUnknownResourceKind, query.Kind)
	}
	return u.Authorize.Execute(ctx, AuthorizeQuery{
		Principal: query.Principal,
		Requirement: entities.Requirement{
			Capabilities: []entities.Capability{capability},
		},
	})
}
