package ports

import (
	"context"
	"time"

	"campus/contexts/identity-access/authorization-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// OrganizationStore is the read boundary the decision queries depend on.
// Implementations must distinguish "not found" from transport failure.
type OrganizationStore interface {
	FindOrganization(ctx context.Context, orgID string) (entities.Organization, bool, error)
}

// PrincipalStore resolves an authenticated caller identity into the
// principal record the engine evaluates. Only the transport adapter uses
// it; the engine itself receives principals by value.
type PrincipalStore interface {
	FindPrincipal(ctx context.Context, userID string) (entities.Principal, bool, error)
}
