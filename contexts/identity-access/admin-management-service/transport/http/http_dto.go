package httptransport

import "time"

// CreateAdminRequest provisions a new secondary admin. Permissions are
// optional; omitted capabilities fall back to the secondary-admin defaults.
type CreateAdminRequest struct {
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	Permissions map[string]bool `json:"permissions,omitempty"`
}

// AdminMembershipDTO mirrors one roster entry.
type AdminMembershipDTO struct {
	UserID      string          `json:"user_id"`
	SubRole     string          `json:"sub_role"`
	Permissions map[string]bool `json:"permissions"`
	AddedAt     time.Time       `json:"added_at"`
	AddedBy     string          `json:"added_by,omitempty"`
}

// CreateAdminResponse never carries the one-time credential; it is delivered
// out of band.
type CreateAdminResponse struct {
	UserID     string             `json:"user_id"`
	Email      string             `json:"email"`
	FullName   string             `json:"full_name"`
	Role       string             `json:"role"`
	Membership AdminMembershipDTO `json:"membership"`
	AuditLogID string             `json:"audit_log_id"`
	OrgVersion int64              `json:"org_version"`
}

// UpdatePermissionsRequest replaces a secondary admin's grants.
type UpdatePermissionsRequest struct {
	Permissions map[string]bool `json:"permissions"`
}

type UpdatePermissionsResponse struct {
	Membership AdminMembershipDTO `json:"membership"`
	AuditLogID string             `json:"audit_log_id"`
	OrgVersion int64              `json:"org_version"`
}

type RemoveAdminResponse struct {
	RemovedUserID string `json:"removed_user_id"`
	DemotedRole   string `json:"demoted_role"`
	AuditLogID    string `json:"audit_log_id"`
	OrgVersion    int64  `json:"org_version"`
}

type AdminListResponse struct {
	Admins []AdminMembershipDTO `json:"admins"`
}

// AuditLogDTO is one admin-set mutation trail entry.
type AuditLogDTO struct {
	AuditID     string    `json:"audit_id"`
	ActorUserID string    `json:"actor_user_id"`
	Action      string    `json:"action"`
	TargetID    string    `json:"target_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuditListResponse struct {
	Logs []AuditLogDTO `json:"logs"`
}

// ErrorResponse is the transport error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
