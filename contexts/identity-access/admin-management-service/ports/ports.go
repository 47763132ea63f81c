package ports

import (
	"context"
	"time"

	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
	"campus/internal/shared/events"
	"campus/internal/shared/outbox"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for principals/audit/outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// IdempotencyRecord stores request hash and previous response payload.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Payload     []byte
	ExpiresAt   time.Time
}

// IdempotencyStore guarantees replay/conflict behavior for mutating endpoints.
type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// CreateSecondaryAdminInput is persisted atomically with audit and outbox rows.
// Principal and Membership arrive fully prepared (merged + forced-false
// permissions) and already validated against the organization aggregate.
type CreateSecondaryAdminInput struct {
	OrgID           string
	ExpectedVersion int64
	Principal       authzentities.Principal
	CredentialHash  string
	Membership      authzentities.AdminMembership
	ActorUserID     string
	AuditLogID      string
	OutboxID        string
	CreatedAt       time.Time
}

// UpdateAdminPermissionsInput carries the post-merge permission set.
type UpdateAdminPermissionsInput struct {
	OrgID           string
	ExpectedVersion int64
	TargetUserID    string
	Permissions     authzentities.PermissionSet
	ActorUserID     string
	AuditLogID      string
	OutboxID        string
	UpdatedAt       time.Time
}

// RemoveAdminInput captures the atomic remove-and-demote unit: membership
// removal and the principal's demotion must land together.
type RemoveAdminInput struct {
	OrgID           string
	ExpectedVersion int64
	TargetUserID    string
	DemotedRole     authzentities.Role
	ActorUserID     string
	AuditLogID      string
	OutboxID        string
	RemovedAt       time.Time
}

// AdminMutationResult is returned by the admin-set repository operations.
type AdminMutationResult struct {
	Membership authzentities.AdminMembership
	Principal  authzentities.Principal
	AuditLogID string
	NewVersion int64
}

// Event types emitted on the policy-changed stream.
const (
	EventTypeSecondaryAdminCreated   = "identity.secondary_admin_created"
	EventTypeAdminPermissionsUpdated = "identity.admin_permissions_updated"
	EventTypeAdminRemoved            = "identity.admin_removed"
)

// Audit actions recorded on the organization trail.
const (
	AuditActionSecondaryAdminCreated = "secondary_admin_created"
	AuditActionPermissionsUpdated    = "admin_permissions_updated"
	AuditActionAdminRemoved          = "admin_removed"
)

// AdminAuditLog records one admin-set mutation for the organization trail.
type AdminAuditLog struct {
	AuditID     string
	OrgID       string
	ActorUserID string
	Action      string
	TargetID    string
	CreatedAt   time.Time
}

// Repository is the write/read boundary for organization admin state.
// Mutations reject stale ExpectedVersion values with ErrVersionConflict so
// concurrent read-modify-write cycles serialize instead of losing updates.
type Repository interface {
	GetOrganization(ctx context.Context, orgID string) (authzentities.Organization, bool, error)
	FindPrincipal(ctx context.Context, userID string) (authzentities.Principal, bool, error)
	FindPrincipalByEmail(ctx context.Context, email string) (authzentities.Principal, bool, error)
	CreateSecondaryAdmin(ctx context.Context, input CreateSecondaryAdminInput) (AdminMutationResult, error)
	UpdateAdminPermissions(ctx context.Context, input UpdateAdminPermissionsInput) (AdminMutationResult, error)
	RemoveAdmin(ctx context.Context, input RemoveAdminInput) (AdminMutationResult, error)
	ListAdmins(ctx context.Context, orgID string) ([]authzentities.AdminMembership, error)
	ListAuditLogs(ctx context.Context, orgID string, limit int) ([]AdminAuditLog, error)
}

// CredentialIssuer provisions the one-time secret for a new admin account.
// Hash returns the stored form; the raw secret only travels to the notifier.
type CredentialIssuer interface {
	Generate(ctx context.Context) (string, error)
	Hash(secret string) (string, error)
}

// NotificationInput describes one delivery attempt.
type NotificationInput struct {
	Address  string
	Template string
	Payload  map[string]string
}

// Notifier delivers account notifications. Delivery is best-effort relative
// to the mutation: failures are logged, never rolled back.
type Notifier interface {
	Notify(ctx context.Context, input NotificationInput) (bool, error)
}

// OutboxMessage is the shared outbox row shape, pending relay.
type OutboxMessage = outbox.Message

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// PolicyChangedEvent reuses the shared cross-service envelope.
type PolicyChangedEvent = events.Envelope

// PolicyChangedPublisher emits admin-policy change events to the bus adapter.
type PolicyChangedPublisher interface {
	PublishPolicyChanged(ctx context.Context, event PolicyChangedEvent) error
}
