package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus/contexts/identity-access/admin-management-service/adapters/memory"
	domainerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
	authzerrors "campus/contexts/identity-access/authorization-service/domain/errors"
)

func newFixtureStore() *memory.Store {
	store := memory.NewStore()
	store.SetNow(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	primary := authzentities.NewPermissionSet()
	for _, capability := range authzentities.AllCapabilities() {
		primary[capability] = true
	}
	store.SeedOrganization(authzentities.Organization{
		OrgID:   "org-1",
		Name:    "North Campus",
		Version: 1,
		Admins: []authzentities.AdminMembership{
			{UserID: "prim-1", SubRole: authzentities.SubRolePrimaryAdmin, Permissions: primary},
			{UserID: "sec-1", SubRole: authzentities.SubRoleSecondaryAdmin, Permissions: authzentities.DefaultSecondaryAdminPermissions()},
		},
	})
	store.SeedPrincipal(authzentities.Principal{UserID: "prim-1", Role: authzentities.RoleAdmin, OrganizationID: "org-1"})
	store.SeedPrincipal(authzentities.Principal{UserID: "sec-1", Role: authzentities.RoleAdmin, OrganizationID: "org-1"})
	store.SeedPrincipal(authzentities.Principal{UserID: "teach-1", Role: authzentities.RoleTeacher, OrganizationID: "org-1"})
	return store
}

func TestListAdminsAnyOrgAdminMayRead(t *testing.T) {
	store := newFixtureStore()
	service := Service{Repository: store, Clock: store}

	for _, actor := range []string{"prim-1", "sec-1"} {
		admins, err := service.ListAdmins(context.Background(), actor, "org-1")
		if err != nil {
			t.Fatalf("actor %s: %v", actor, err)
		}
		if len(admins) != 2 {
			t.Fatalf("actor %s: roster = %d members", actor, len(admins))
		}
	}
}

func TestListAdminsDeniesNonAdmins(t *testing.T) {
	service := Service{Repository: newFixtureStore()}

	var denial *authzerrors.DenialError
	_, err := service.ListAdmins(context.Background(), "teach-1", "org-1")
	if !errors.As(err, &denial) || denial.Reason != authzentities.ReasonNotAnAdminOfOrganization {
		t.Fatalf("teacher viewer: err = %v", err)
	}

	_, err = service.ListAdmins(context.Background(), "ghost-1", "org-1")
	if !errors.As(err, &denial) || denial.Reason != authzentities.ReasonUnauthenticated {
		t.Fatalf("unknown viewer: err = %v", err)
	}
}

func TestListAdminsInvalidRequest(t *testing.T) {
	service := Service{Repository: newFixtureStore()}
	if _, err := service.ListAdmins(context.Background(), "", "org-1"); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}
