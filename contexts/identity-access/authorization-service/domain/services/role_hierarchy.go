package services

import "campus/contexts/identity-access/authorization-service/domain/entities"

// RoleLevel returns the fixed rank of a global role. Unknown roles rank
// below every known role.
func RoleLevel(role entities.Role) int {
	switch role {
	case entities.RoleStudent, entities.RoleSpecialUser:
		return 1
	case entities.RoleTeacher:
		return 2
	case entities.RoleAdmin:
		return 3
	case entities.RoleSuperAdmin:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether userRole ranks at or above minRole.
func AtLeast(userRole entities.Role, minRole entities.Role) bool {
	return RoleLevel(userRole) >= RoleLevel(minRole)
}
