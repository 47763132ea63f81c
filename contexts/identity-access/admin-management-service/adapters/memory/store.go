package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	domainerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	"campus/contexts/identity-access/admin-management-service/ports"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
	"campus/internal/shared/events"
)

// Store is the in-memory admin-management backend used by tests and local
// development. It enforces the same optimistic-version contract as the
// postgres adapter so concurrency behavior is testable without a database.
type Store struct {
	mu                sync.Mutex
	organizations     map[string]authzentities.Organization
	principals        map[string]authzentities.Principal
	principalsByEmail map[string]string
	credentialHashes  map[string]string
	audits            map[string][]ports.AdminAuditLog
	outbox            []outboxRow
	idempotency       map[string]ports.IdempotencyRecord
	notifications     []ports.NotificationInput
	now               *time.Time
	idSeq             int
}

type outboxRow struct {
	message   ports.OutboxMessage
	published bool
}

func NewStore() *Store {
	return &Store{
		organizations:     make(map[string]authzentities.Organization),
		principals:        make(map[string]authzentities.Principal),
		principalsByEmail: make(map[string]string),
		credentialHashes:  make(map[string]string),
		audits:            make(map[string][]ports.AdminAuditLog),
		idempotency:       make(map[string]ports.IdempotencyRecord),
	}
}

// SetNow pins the clock for deterministic tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pinned := now.UTC()
	s.now = &pinned
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now != nil {
		return *s.now
	}
	return time.Now().UTC()
}

// NewID issues sequential fixture identifiers.
func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	return fmt.Sprintf("id-%06d", s.idSeq), nil
}

func (s *Store) SeedOrganization(org authzentities.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[org.OrgID] = cloneOrganization(org)
}

func (s *Store) SeedPrincipal(principal authzentities.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[principal.UserID] = principal
	if principal.Email != "" {
		s.principalsByEmail[principal.Email] = principal.UserID
	}
}

func (s *Store) GetOrganization(_ context.Context, orgID string) (authzentities.Organization, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.organizations[orgID]
	if !ok {
		return authzentities.Organization{}, false, nil
	}
	return cloneOrganization(org), true, nil
}

func (s *Store) FindPrincipal(_ context.Context, userID string) (authzentities.Principal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	principal, ok := s.principals[userID]
	return principal, ok, nil
}

func (s *Store) FindPrincipalByEmail(_ context.Context, email string) (authzentities.Principal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.principalsByEmail[email]
	if !ok {
		return authzentities.Principal{}, false, nil
	}
	principal, ok := s.principals[userID]
	return principal, ok, nil
}

func (s *Store) CreateSecondaryAdmin(_ context.Context, input ports.CreateSecondaryAdminInput) (ports.AdminMutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero ports.AdminMutationResult

	org, ok := s.organizations[input.OrgID]
	if !ok {
		return zero, fmt.Errorf("organization %s not found", input.OrgID)
	}
	if org.Version != input.ExpectedVersion {
		return zero, domainerrors.ErrVersionConflict
	}
	if _, taken := s.principalsByEmail[input.Principal.Email]; taken {
		return zero, domainerrors.ErrDuplicateEmail
	}

	org = cloneOrganization(org)
	org.Admins = append(org.Admins, cloneMembership(input.Membership))
	org.Version++
	s.organizations[input.OrgID] = org

	s.principals[input.Principal.UserID] = input.Principal
	s.principalsByEmail[input.Principal.Email] = input.Principal.UserID
	s.credentialHashes[input.Principal.UserID] = input.CredentialHash

	s.appendAudit(ports.AdminAuditLog{
		AuditID:     input.AuditLogID,
		OrgID:       input.OrgID,
		ActorUserID: input.ActorUserID,
		Action:      ports.AuditActionSecondaryAdminCreated,
		TargetID:    input.Principal.UserID,
		CreatedAt:   input.CreatedAt.UTC(),
	})
	s.appendOutbox(input.OutboxID, ports.EventTypeSecondaryAdminCreated, input.OrgID, input.Principal.UserID, input.CreatedAt, map[string]any{
		"user_id":  input.Principal.UserID,
		"sub_role": string(input.Membership.SubRole),
	})

	return ports.AdminMutationResult{
		Membership: cloneMembership(input.Membership),
		Principal:  input.Principal,
		AuditLogID: input.AuditLogID,
		NewVersion: org.Version,
	}, nil
}

func (s *Store) UpdateAdminPermissions(_ context.Context, input ports.UpdateAdminPermissionsInput) (ports.AdminMutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero ports.AdminMutationResult

	org, ok := s.organizations[input.OrgID]
	if !ok {
		return zero, fmt.Errorf("organization %s not found", input.OrgID)
	}
	if org.Version != input.ExpectedVersion {
		return zero, domainerrors.ErrVersionConflict
	}

	org = cloneOrganization(org)
	var updated *authzentities.AdminMembership
	for i := range org.Admins {
		if org.Admins[i].UserID == input.TargetUserID {
			org.Admins[i].Permissions = input.Permissions.Clone()
			updated = &org.Admins[i]
			break
		}
	}
	if updated == nil {
		return zero, domainerrors.ErrAdminNotFound
	}
	org.Version++
	s.organizations[input.OrgID] = org

	s.appendAudit(ports.AdminAuditLog{
		AuditID:     input.AuditLogID,
		OrgID:       input.OrgID,
		ActorUserID: input.ActorUserID,
		Action:      ports.AuditActionPermissionsUpdated,
		TargetID:    input.TargetUserID,
		CreatedAt:   input.UpdatedAt.UTC(),
	})
	s.appendOutbox(input.OutboxID, ports.EventTypeAdminPermissionsUpdated, input.OrgID, input.TargetUserID, input.UpdatedAt, map[string]any{
		"user_id":     input.TargetUserID,
		"permissions": input.Permissions,
	})

	return ports.AdminMutationResult{
		Membership: cloneMembership(*updated),
		Principal:  s.principals[input.TargetUserID],
		AuditLogID: input.AuditLogID,
		NewVersion: org.Version,
	}, nil
}

func (s *Store) RemoveAdmin(_ context.Context, input ports.RemoveAdminInput) (ports.AdminMutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero ports.AdminMutationResult

	org, ok := s.organizations[input.OrgID]
	if !ok {
		return zero, fmt.Errorf("organization %s not found", input.OrgID)
	}
	if org.Version != input.ExpectedVersion {
		return zero, domainerrors.ErrVersionConflict
	}

	org = cloneOrganization(org)
	var removed *authzentities.AdminMembership
	for i := range org.Admins {
		if org.Admins[i].UserID == input.TargetUserID {
			membership := org.Admins[i]
			org.Admins = append(org.Admins[:i], org.Admins[i+1:]...)
			removed = &membership
			break
		}
	}
	if removed == nil {
		return zero, domainerrors.ErrAdminNotFound
	}
	org.Version++
	s.organizations[input.OrgID] = org

	principal, ok := s.principals[input.TargetUserID]
	if ok {
		principal.Role = input.DemotedRole
		principal.OrganizationID = ""
		s.principals[input.TargetUserID] = principal
	}

	s.appendAudit(ports.AdminAuditLog{
		AuditID:     input.AuditLogID,
		OrgID:       input.OrgID,
		ActorUserID: input.ActorUserID,
		Action:      ports.AuditActionAdminRemoved,
		TargetID:    input.TargetUserID,
		CreatedAt:   input.RemovedAt.UTC(),
	})
	s.appendOutbox(input.OutboxID, ports.EventTypeAdminRemoved, input.OrgID, input.TargetUserID, input.RemovedAt, map[string]any{
		"user_id":      input.TargetUserID,
		"demoted_role": string(input.DemotedRole),
	})

	return ports.AdminMutationResult{
		Membership: cloneMembership(*removed),
		Principal:  principal,
		AuditLogID: input.AuditLogID,
		NewVersion: org.Version,
	}, nil
}

func (s *Store) ListAdmins(_ context.Context, orgID string) ([]authzentities.AdminMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.organizations[orgID]
	if !ok {
		return nil, nil
	}
	admins := make([]authzentities.AdminMembership, 0, len(org.Admins))
	for _, membership := range org.Admins {
		admins = append(admins, cloneMembership(membership))
	}
	return admins, nil
}

func (s *Store) ListAuditLogs(_ context.Context, orgID string, limit int) ([]ports.AdminAuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trail := s.audits[orgID]
	if limit <= 0 || limit > len(trail) {
		limit = len(trail)
	}
	// Stored oldest-first; serve newest-first.
	out := make([]ports.AdminAuditLog, 0, limit)
	for i := len(trail) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, trail[i])
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.idempotency[key]
	if !ok || now.After(record.ExpiresAt) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.OutboxMessage, 0, limit)
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		out = append(out, row.message)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			s.outbox[i].published = true
			return nil
		}
	}
	return fmt.Errorf("outbox row %s not found", outboxID)
}

// Notify records the delivery attempt and reports success.
func (s *Store) Notify(_ context.Context, input ports.NotificationInput) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, input)
	return true, nil
}

// Notifications returns recorded deliveries for assertions.
func (s *Store) Notifications() []ports.NotificationInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.NotificationInput, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// CredentialHash returns the stored credential hash for a user.
func (s *Store) CredentialHash(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, ok := s.credentialHashes[userID]
	return hash, ok
}

func (s *Store) appendAudit(entry ports.AdminAuditLog) {
	s.audits[entry.OrgID] = append(s.audits[entry.OrgID], entry)
}

func (s *Store) appendOutbox(outboxID, eventType, orgID, entityID string, occurredAt time.Time, payload map[string]any) {
	payload["org_id"] = orgID
	envelope := events.Envelope{
		EventID:        outboxID,
		EventType:      eventType,
		SourceService:  "admin-management-service",
		OccurredAtUTC:  occurredAt.UTC(),
		CorrelationID:  outboxID,
		EntityType:     "organization_admin",
		EntityID:       entityID,
		PayloadVersion: 1,
		Payload:        payload,
	}
	raw, _ := json.Marshal(envelope)
	s.outbox = append(s.outbox, outboxRow{message: ports.OutboxMessage{
		OutboxID:  outboxID,
		EventType: eventType,
		Payload:   raw,
		CreatedAt: occurredAt.UTC(),
	}})
}

func cloneOrganization(org authzentities.Organization) authzentities.Organization {
	clone := org
	clone.Admins = make([]authzentities.AdminMembership, 0, len(org.Admins))
	for _, membership := range org.Admins {
		clone.Admins = append(clone.Admins, cloneMembership(membership))
	}
	return clone
}

func cloneMembership(membership authzentities.AdminMembership) authzentities.AdminMembership {
	clone := membership
	clone.Permissions = membership.Permissions.Clone()
	return clone
}

var (
	_ ports.Repository       = (*Store)(nil)
	_ ports.IdempotencyStore = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
	_ ports.Notifier         = (*Store)(nil)
)
