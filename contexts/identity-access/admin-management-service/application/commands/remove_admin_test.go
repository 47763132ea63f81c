package commands

import (
	"context"
	"errors"
	"testing"

	domainerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
)

func TestRemoveAdminDemotesPrincipal(t *testing.T) {
	store := newFixtureStore()
	service := newFixtureService(store)

	result, err := service.RemoveAdmin(context.Background(), "key-1", "prim-1", RemoveAdminCommand{
		OrgID:        "org-1",
		TargetUserID: "sec-1",
	})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if result.RemovedUserID != "sec-1" || result.DemotedRole != authzentities.RoleSpecialUser {
		t.Fatalf("result = %+v", result)
	}
	if result.OrgVersion != 2 {
		t.Fatalf("org version = %d", result.OrgVersion)
	}

	principal, found, err := store.FindPrincipal(context.Background(), "sec-1")
	if err != nil || !found {
		t.Fatalf("find principal: found=%v err=%v", found, err)
	}
	if principal.Role != authzentities.RoleSpecialUser || principal.OrganizationID != "" {
		t.Fatalf("principal after removal = %+v", principal)
	}

	admins, err := store.ListAdmins(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(admins) != 1 || admins[0].UserID != "prim-1" {
		t.Fatalf("roster after removal = %+v", admins)
	}
}

func TestRemoveAdminPrimaryStandingAloneSuffices(t *testing.T) {
	store := newLimitedPrimaryStore()
	service := newFixtureService(store)

	result, err := service.RemoveAdmin(context.Background(), "key-1", "prim-1", RemoveAdminCommand{
		OrgID:        "org-1",
		TargetUserID: "sec-1",
	})
	if err != nil {
		t.Fatalf("remove by limited primary: %v", err)
	}
	if result.RemovedUserID != "sec-1" {
		t.Fatalf("result = %+v", result)
	}
}

func TestRemoveAdminSelfTarget(t *testing.T) {
	service := newFixtureService(newFixtureStore())
	_, err := service.RemoveAdmin(context.Background(), "key-1", "prim-1", RemoveAdminCommand{
		OrgID:        "org-1",
		TargetUserID: "prim-1",
	})
	if !errors.Is(err, domainerrors.ErrCannotRemoveSelf) {
		t.Fatalf("err = %v, want ErrCannotRemoveSelf", err)
	}
}

func TestRemoveAdminPrimaryTarget(t *testing.T) {
	service := newFixtureService(newFixtureStore())
	_, err := service.RemoveAdmin(context.Background(), "key-1", "root-1", RemoveAdminCommand{
		OrgID:        "org-1",
		TargetUserID: "prim-1",
	})
	if !errors.Is(err, domainerrors.ErrCannotRemovePrimaryAdmin) {
		t.Fatalf("err = %v, want ErrCannotRemovePrimaryAdmin", err)
	}
}

func TestRemoveAdminUnknownTarget(t *testing.T) {
	service := newFixtureService(newFixtureStore())
	_, err := service.RemoveAdmin(context.Background(), "key-1", "prim-1", RemoveAdminCommand{
		OrgID:        "org-1",
		TargetUserID: "ghost-1",
	})
	if !errors.Is(err, domainerrors.ErrAdminNotFound) {
		t.Fatalf("err = %v, want ErrAdminNotFound", err)
	}
}

func TestRemoveAdminIdempotentReplayAfterStateChanged(t *testing.T) {
	store := newFixtureStore()
	service := newFixtureService(store)
	cmd := RemoveAdminCommand{OrgID: "org-1", TargetUserID: "sec-1"}

	first, err := service.RemoveAdmin(context.Background(), "key-1", "prim-1", cmd)
	if err != nil {
		t.Fatalf("first remove: %v", err)
	}
	// The membership is gone now; the same key must replay the recorded
	// outcome instead of reporting not-found.
	replay, err := service.RemoveAdmin(context.Background(), "key-1", "prim-1", cmd)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.RemovedUserID != first.RemovedUserID || replay.AuditLogID != first.AuditLogID {
		t.Fatalf("replay diverged: first=%+v replay=%+v", first, replay)
	}
}
