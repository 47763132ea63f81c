package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus/contexts/identity-access/admin-management-service/adapters/memory"
	"campus/contexts/identity-access/admin-management-service/ports"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
)

type capturingPublisher struct {
	events []ports.PolicyChangedEvent
	err    error
}

func (p *capturingPublisher) PublishPolicyChanged(_ context.Context, event ports.PolicyChangedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func storeWithPendingRows(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	primary := authzentities.NewPermissionSet()
	for _, capability := range authzentities.AllCapabilities() {
		primary[capability] = true
	}
	store.SeedOrganization(authzentities.Organization{
		OrgID:   "org-1",
		Version: 1,
		Admins: []authzentities.AdminMembership{
			{UserID: "prim-1", SubRole: authzentities.SubRolePrimaryAdmin, Permissions: primary},
		},
	})
	if _, err := store.CreateSecondaryAdmin(context.Background(), ports.CreateSecondaryAdminInput{
		OrgID:           "org-1",
		ExpectedVersion: 1,
		Principal: authzentities.Principal{
			UserID:         "sec-1",
			Email:          "sec1@campus.test",
			Role:           authzentities.RoleAdmin,
			OrganizationID: "org-1",
		},
		CredentialHash: "hash:secret",
		Membership: authzentities.AdminMembership{
			UserID:      "sec-1",
			SubRole:     authzentities.SubRoleSecondaryAdmin,
			Permissions: authzentities.DefaultSecondaryAdminPermissions(),
			AddedBy:     "prim-1",
		},
		ActorUserID: "prim-1",
		AuditLogID:  "audit-1",
		OutboxID:    "outbox-1",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed outbox: %v", err)
	}
	return store
}

func TestRunOncePublishesAndMarksRows(t *testing.T) {
	store := storeWithPendingRows(t)
	publisher := &capturingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("published = %d events", len(publisher.events))
	}
	event := publisher.events[0]
	if event.EventID != "outbox-1" || event.EventType != ports.EventTypeSecondaryAdminCreated {
		t.Fatalf("event = %+v", event)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after relay = %d rows", len(pending))
	}
}

func TestRunOnceLeavesRowsPendingOnPublishFailure(t *testing.T) {
	store := storeWithPendingRows(t)
	publisher := &capturingPublisher{err: errors.New("bus down")}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected publish failure to surface")
	}
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("failed publish must keep the row pending, got %d", len(pending))
	}
}

func TestRunOnceNoPendingRowsIsANoop(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("published %d events from an empty outbox", len(publisher.events))
	}
}
