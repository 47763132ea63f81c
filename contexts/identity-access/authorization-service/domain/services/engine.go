package services

import "campus/contexts/identity-access/authorization-service/domain/entities"

// Decide is the single authorization decision function. Every permission
// check in the platform funnels through it instead of repeating role/org
// conditionals at call sites.
//
// It is pure over supplied state: org is the principal's already-fetched
// organization (nil when the lookup found nothing or was never needed).
// Checks run in a fixed short-circuit order so a given failure class always
// produces the same reason code:
//
//  1. unauthenticated principal
//  2. superAdmin universal bypass
//  3. exact-role membership
//  4. minimum role level
//  5. organization chain: org ref -> org record -> admin membership ->
//     primary sub-role -> capability set
func Decide(principal *entities.Principal, req entities.Requirement, org *entities.Organization) entities.Decision {
	if principal == nil || principal.UserID == "" {
		return entities.Deny(entities.ReasonUnauthenticated)
	}

	// Deliberate universal override: superAdmin clears every requirement,
	// including organization-scoped ones for organizations it does not
	// belong to.
	if principal.Role == entities.RoleSuperAdmin {
		return entities.Allow(nil)
	}

	exactRoles := req.ExactRoles
	if len(exactRoles) == 0 && req.ImpliesAdminRole() {
		// Capability and primary-standing checks implicitly demand the admin
		// global role, so a teacher is turned away before any store lookup.
		// A bare membership requirement walks the organization chain instead.
		exactRoles = []entities.Role{entities.RoleAdmin}
	}
	if len(exactRoles) > 0 && !containsRole(exactRoles, principal.Role) {
		return entities.Deny(entities.ReasonWrongRole)
	}

	if req.MinRole != "" && !AtLeast(principal.Role, req.MinRole) {
		return entities.Deny(entities.ReasonInsufficientRoleLevel)
	}

	if !req.OrganizationScoped() {
		return entities.Allow(nil)
	}

	if principal.OrganizationID == "" {
		return entities.Deny(entities.ReasonNoOrganization)
	}
	if org == nil || org.OrgID != principal.OrganizationID {
		// The principal references an organization the store no longer
		// knows: a consistency fault reported as its own reason code.
		return entities.Deny(entities.ReasonOrganizationNotFound)
	}

	membership, ok := org.FindAdmin(principal.UserID)
	if !ok {
		return entities.Deny(entities.ReasonNotAnAdminOfOrganization)
	}
	if req.PrimaryAdminOnly && !membership.IsPrimary() {
		return entities.Deny(entities.ReasonPrimaryAdminRequired)
	}
	if len(req.Capabilities) > 0 {
		if missing := membership.Permissions.Missing(req.Capabilities); len(missing) > 0 {
			return entities.DenyMissing(missing)
		}
	}

	return entities.Allow(&entities.AuthorizationContext{
		OrganizationID: org.OrgID,
		SubRole:        membership.SubRole,
		Permissions:    membership.Permissions.Clone(),
	})
}

func containsRole(roles []entities.Role, role entities.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}
