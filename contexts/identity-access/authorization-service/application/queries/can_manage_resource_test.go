package queries

import (
	"context"
	"errors"
	"testing"

	"campus/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "campus/contexts/identity-access/authorization-service/domain/errors"
)

func TestCanManageResourceUnknownKind(t *testing.T) {
	useCase := CanManageResourceUseCase{Authorize: AuthorizeUseCase{Organizations: seededStore()}}
	_, err := useCase.Execute(context.Background(), CanManageResourceQuery{
		Principal: &entities.Principal{UserID: "prim-1", Role: entities.RoleAdmin, OrganizationID: "org-1"},
		Kind:      entities.ResourceKind("spaceship"),
	})
	if !errors.Is(err, domainerrors.ErrUnknownResourceKind) {
		t.Fatalf("err = %v, want ErrUnknownResourceKind", err)
	}
}

func TestCanManageResourceMapsKindToCapability(t *testing.T) {
	useCase := CanManageResourceUseCase{Authorize: AuthorizeUseCase{Organizations: seededStore()}}
	secondary := &entities.Principal{UserID: "sec-1", Role: entities.RoleAdmin, OrganizationID: "org-1"}

	// Secondary defaults grant class management.
	decision, err := useCase.Execute(context.Background(), CanManageResourceQuery{Principal: secondary, Kind: entities.ResourceClass})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("class check: got %+v", decision)
	}

	// The admin resource maps to the forced-false canManageAdmins.
	decision, err = useCase.Execute(context.Background(), CanManageResourceQuery{Principal: secondary, Kind: entities.ResourceAdmin})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if decision.Allowed || decision.Reason != entities.ReasonMissingCapabilities {
		t.Fatalf("admin check: got %+v", decision)
	}
	if len(decision.Missing) != 1 || decision.Missing[0] != entities.CapabilityManageAdmins {
		t.Fatalf("missing = %v", decision.Missing)
	}

	// Section shares the class capability.
	decision, err = useCase.Execute(context.Background(), CanManageResourceQuery{Principal: secondary, Kind: entities.ResourceSection})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("section check: got %+v", decision)
	}
}
