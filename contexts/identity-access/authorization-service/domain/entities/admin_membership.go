package entities

import "time"

// SubRole is the finer-grained admin standing inside one organization.
type SubRole string

const (
	SubRolePrimaryAdmin   SubRole = "primary_admin"
	SubRoleSecondaryAdmin SubRole = "secondary_admin"
)

// AdminMembership records one principal's admin standing within one
// organization. SubRole lives here, never on Principal: the organization's
// membership set is the single source of truth for primary-admin status.
type AdminMembership struct {
	UserID      string        `json:"user_id"`
	SubRole     SubRole       `json:"sub_role"`
	Permissions PermissionSet `json:"permissions"`
	AddedAt     time.Time     `json:"added_at"`
	AddedBy     string        `json:"added_by"`
}

// IsPrimary reports whether the membership is the organization's primary admin.
func (m AdminMembership) IsPrimary() bool {
	return m.SubRole == SubRolePrimaryAdmin
}
