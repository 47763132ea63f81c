package entities

// Role is the platform-wide role attached to every principal.
type Role string

const (
	RoleStudent     Role = "student"
	RoleTeacher     Role = "teacher"
	RoleAdmin       Role = "admin"
	RoleSuperAdmin  Role = "superAdmin"
	RoleSpecialUser Role = "specialUser"
)

// IsValidRole reports whether role belongs to the closed role enumeration.
func IsValidRole(role Role) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleSuperAdmin, RoleSpecialUser:
		return true
	default:
		return false
	}
}

// Principal is an authenticated actor. OrganizationID is empty for
// principals that do not belong to an organization.
type Principal struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name,omitempty"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
}
