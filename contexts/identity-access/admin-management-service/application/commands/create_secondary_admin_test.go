package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus/contexts/identity-access/admin-management-service/adapters/memory"
	domainerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	"campus/contexts/identity-access/admin-management-service/ports"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
	authzerrors "campus/contexts/identity-access/authorization-service/domain/errors"
)

type staticIssuer struct{}

func (staticIssuer) Generate(context.Context) (string, error) { return "secret-1", nil }
func (staticIssuer) Hash(secret string) (string, error)       { return "hash:" + secret, nil }

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
	store.SeedPrincipal(authzentities.Principal{UserID: "prim-1", Email: "primary@campus.test", Role: authzentities.RoleAdmin, OrganizationID: "org-1"})
	store.SeedPrincipal(authzentities.Principal{UserID: "sec-1", Email: "secondary@campus.test", Role: authzentities.RoleAdmin, OrganizationID: "org-1"})
	store.SeedPrincipal(authzentities.Principal{UserID: "root-1", Email: "root@campus.test", Role: authzentities.RoleSuperAdmin})
	store.SeedPrincipal(authzentities.Principal{UserID: "teach-1", Email: "teacher@campus.test", Role: authzentities.RoleTeacher, OrganizationID: "org-1"})
	return store
}

// newLimitedPrimaryStore seeds an organization whose primary admin holds only
// canEnrollStudents. Primary standing is what authorizes update/remove; only
// provisioning demands canManageAdmins.
func newLimitedPrimaryStore() *memory.Store {
	store := memory.NewStore()
	store.SetNow(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	limited := authzentities.NewPermissionSet()
	limited[authzentities.CapabilityEnrollStudents] = true
	store.SeedOrganization(authzentities.Organization{
		OrgID:   "org-1",
		Name:    "North Campus",
		Version: 1,
		Admins: []authzentities.AdminMembership{
			{UserID: "prim-1", SubRole: authzentities.SubRolePrimaryAdmin, Permissions: limited},
			{UserID: "sec-1", SubRole: authzentities.SubRoleSecondaryAdmin, Permissions: authzentities.DefaultSecondaryAdminPermissions()},
		},
	})
	store.SeedPrincipal(authzentities.Principal{UserID: "prim-1", Email: "primary@campus.test", Role: authzentities.RoleAdmin, OrganizationID: "org-1"})
	store.SeedPrincipal(authzentities.Principal{UserID: "sec-1", Email: "secondary@campus.test", Role: authzentities.RoleAdmin, OrganizationID: "org-1"})
	return store
}

func newFixtureService(store *memory.Store) Service {
	return Service{
		Repository:  store,
		Idempotency: store,
		Credentials: staticIssuer{},
		Notifier:    store,
		Clock:       store,
		IDs:         store,
	}
}

func TestCreateSecondaryAdminForcesRestrictedCapabilitiesFalse(t *testing.T) {
	store := newFixtureStore()
	service := newFixtureService(store)

	result, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "New.Admin@Campus.Test",
		FullName: "New Admin",
		RequestedPermissions: authzentities.PermissionSet{
			authzentities.CapabilityManageAdmins:   true,
			authzentities.CapabilityManageContent:  true,
			authzentities.CapabilityEnrollTeachers: true,
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	perms := result.Membership.Permissions
	if perms.Grants(authzentities.CapabilityManageAdmins) || perms.Grants(authzentities.CapabilityManageContent) {
		t.Fatalf("forced-false capabilities granted: %+v", perms)
	}
	if !perms.Grants(authzentities.CapabilityEnrollTeachers) || !perms.Grants(authzentities.CapabilityEnrollStudents) {
		t.Fatalf("expected requested+default grants, got %+v", perms)
	}
	if result.Principal.Email != "new.admin@campus.test" {
		t.Fatalf("email not normalized: %q", result.Principal.Email)
	}
	if result.Principal.Role != authzentities.RoleAdmin || result.Principal.OrganizationID != "org-1" {
		t.Fatalf("principal = %+v", result.Principal)
	}
	if result.OrgVersion != 2 {
		t.Fatalf("org version = %d, want 2", result.OrgVersion)
	}
	if result.AuditLogID == "" {
		t.Fatal("missing audit log id")
	}
}

func TestCreateSecondaryAdminStoresHashNeverTheSecret(t *testing.T) {
	store := newFixtureStore()
	service := newFixtureService(store)

	result, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "new.admin@campus.test",
		FullName: "New Admin",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	hash, ok := store.CredentialHash(result.Principal.UserID)
	if !ok || hash != "hash:secret-1" {
		t.Fatalf("stored credential hash = %q", hash)
	}

	notifications := store.Notifications()
	if len(notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifications))
	}
	invite := notifications[0]
	if invite.Template != "secondary_admin_invite" || invite.Address != "new.admin@campus.test" {
		t.Fatalf("invite = %+v", invite)
	}
	if invite.Payload["temporary_secret"] != "secret-1" {
		t.Fatalf("invite payload = %+v", invite.Payload)
	}
}

func TestCreateSecondaryAdminDuplicateEmail(t *testing.T) {
	store := newFixtureStore()
	service := newFixtureService(store)

	_, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "Secondary@Campus.Test",
		FullName: "Duplicate Person",
	})
	if !errors.Is(err, domainerrors.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestCreateSecondaryAdminIdempotentReplay(t *testing.T) {
	store := newFixtureStore()
	service := newFixtureService(store)
	cmd := CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "new.admin@campus.test",
		FullName: "New Admin",
	}

	first, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", cmd)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	replay, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", cmd)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.Principal.UserID != first.Principal.UserID || replay.AuditLogID != first.AuditLogID {
		t.Fatalf("replay diverged: first=%+v replay=%+v", first, replay)
	}

	admins, err := store.ListAdmins(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(admins) != 3 {
		t.Fatalf("roster = %d members after replay, want 3", len(admins))
	}
	if got := store.Notifications(); len(got) != 1 {
		t.Fatalf("replay re-sent the invite: %d notifications", len(got))
	}
}

func TestCreateSecondaryAdminIdempotencyConflict(t *testing.T) {
	store := newFixtureStore()
	service := newFixtureService(store)

	_, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "new.admin@campus.test",
		FullName: "New Admin",
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err = service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "other.admin@campus.test",
		FullName: "Other Admin",
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("err = %v, want ErrIdempotencyConflict", err)
	}
}

func TestCreateSecondaryAdminMissingIdempotencyKey(t *testing.T) {
	service := newFixtureService(newFixtureStore())
	_, err := service.CreateSecondaryAdmin(context.Background(), "  ", "prim-1", CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "new.admin@campus.test",
		FullName: "New Admin",
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyRequired) {
		t.Fatalf("err = %v, want ErrIdempotencyKeyRequired", err)
	}
}

func TestCreateSecondaryAdminActorGate(t *testing.T) {
	service := newFixtureService(newFixtureStore())
	cmd := CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "new.admin@campus.test",
		FullName: "New Admin",
	}

	var denial *authzerrors.DenialError

	// Secondary admins cannot mint other admins.
	_, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "sec-1", cmd)
	if !errors.As(err, &denial) || denial.Reason != authzentities.ReasonPrimaryAdminRequired {
		t.Fatalf("secondary actor: err = %v", err)
	}

	// Teachers are turned away on global role before any org state matters.
	_, err = service.CreateSecondaryAdmin(context.Background(), "key-2", "teach-1", cmd)
	if !errors.As(err, &denial) || denial.Reason != authzentities.ReasonWrongRole {
		t.Fatalf("teacher actor: err = %v", err)
	}

	// Unknown actors deny as unauthenticated.
	_, err = service.CreateSecondaryAdmin(context.Background(), "key-3", "ghost-1", cmd)
	if !errors.As(err, &denial) || denial.Reason != authzentities.ReasonUnauthenticated {
		t.Fatalf("unknown actor: err = %v", err)
	}
	if !errors.Is(err, authzerrors.ErrAccessDenied) {
		t.Fatalf("denial should match ErrAccessDenied, got %v", err)
	}
}

func TestCreateSecondaryAdminRequiresManageAdminsCapability(t *testing.T) {
	service := newFixtureService(newLimitedPrimaryStore())

	var denial *authzerrors.DenialError
	_, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "new.admin@campus.test",
		FullName: "New Admin",
	})
	if !errors.As(err, &denial) || denial.Reason != authzentities.ReasonMissingCapabilities {
		t.Fatalf("primary without canManageAdmins: err = %v", err)
	}
	if len(denial.Missing) != 1 || denial.Missing[0] != authzentities.CapabilityManageAdmins {
		t.Fatalf("missing = %v", denial.Missing)
	}
}

func TestCreateSecondaryAdminSuperAdminActor(t *testing.T) {
	store := newFixtureStore()
	service := newFixtureService(store)

	result, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "root-1", CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "new.admin@campus.test",
		FullName: "New Admin",
	})
	if err != nil {
		t.Fatalf("superAdmin create: %v", err)
	}
	if result.Membership.AddedBy != "root-1" {
		t.Fatalf("added_by = %q", result.Membership.AddedBy)
	}

	// superAdmin against a missing org is a not-found denial, not a write.
	var denial *authzerrors.DenialError
	_, err = service.CreateSecondaryAdmin(context.Background(), "key-2", "root-1", CreateSecondaryAdminCommand{
		OrgID:    "org-gone",
		Email:    "elsewhere@campus.test",
		FullName: "Else Where",
	})
	if !errors.As(err, &denial) || denial.Reason != authzentities.ReasonOrganizationNotFound {
		t.Fatalf("missing org: err = %v", err)
	}
}

func TestCreateSecondaryAdminInvalidRequests(t *testing.T) {
	service := newFixtureService(newFixtureStore())
	cases := []CreateSecondaryAdminCommand{
		{OrgID: "org-1", Email: "not-an-email", FullName: "Nobody"},
		{OrgID: "org-1", Email: "@campus.test", FullName: "Nobody"},
		{OrgID: "org-1", Email: "nobody@", FullName: "Nobody"},
		{OrgID: "org-1", Email: "nobody@campus.test", FullName: "   "},
		{OrgID: "", Email: "nobody@campus.test", FullName: "Nobody"},
		{OrgID: "org-1", Email: "nobody@campus.test", FullName: "Nobody",
			RequestedPermissions: authzentities.PermissionSet{"canDoAnything": true}},
	}
	for i, cmd := range cases {
		if _, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", cmd); !errors.Is(err, domainerrors.ErrInvalidRequest) {
			t.Fatalf("case %d: err = %v, want ErrInvalidRequest", i, err)
		}
	}
}

// flakyRepo injects version conflicts ahead of the real write.
type flakyRepo struct {
	*memory.Store
	conflictsLeft int
}

func (f *flakyRepo) CreateSecondaryAdmin(ctx context.Context, input ports.CreateSecondaryAdminInput) (ports.AdminMutationResult, error) {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return ports.AdminMutationResult{}, domainerrors.ErrVersionConflict
	}
	return f.Store.CreateSecondaryAdmin(ctx, input)
}

func TestCreateSecondaryAdminRetriesVersionConflict(t *testing.T) {
	store := newFixtureStore()
	repo := &flakyRepo{Store: store, conflictsLeft: 1}
	service := newFixtureService(store)
	service.Repository = repo

	result, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "new.admin@campus.test",
		FullName: "New Admin",
	})
	if err != nil {
		t.Fatalf("create after one conflict: %v", err)
	}
	if result.OrgVersion != 2 {
		t.Fatalf("org version = %d", result.OrgVersion)
	}
}

func TestCreateSecondaryAdminGivesUpAfterBoundedRetries(t *testing.T) {
	store := newFixtureStore()
	repo := &flakyRepo{Store: store, conflictsLeft: 10}
	service := newFixtureService(store)
	service.Repository = repo

	_, err := service.CreateSecondaryAdmin(context.Background(), "key-1", "prim-1", CreateSecondaryAdminCommand{
		OrgID:    "org-1",
		Email:    "new.admin@campus.test",
		FullName: "New Admin",
	})
	if !errors.Is(err, domainerrors.ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict after exhausted retries", err)
	}
	if repo.conflictsLeft != 7 {
		t.Fatalf("write attempted %d times, want 3", 10-repo.conflictsLeft)
	}
}
