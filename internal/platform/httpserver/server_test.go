package httpserver

import (
	"testing"

	adminmanagement "campus/contexts/identity-access/admin-management-service"
	authorization "campus/contexts/identity-access/authorization-service"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
)

// newTestServer wires both modules on in-memory adapters and seeds one
// organization with a primary and a secondary admin.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	authzModule := authorization.NewInMemoryModule(nil)
	adminModule := adminmanagement.NewInMemoryModule(nil)

	primary := authzentities.NewPermissionSet()
	for _, capability := range authzentities.AllCapabilities() {
		primary[capability] = true
	}
	org := authzentities.Organization{
		OrgID:   "org-1",
		Name:    "North Campus",
		Version: 1,
		Admins: []authzentities.AdminMembership{
			{UserID: "prim-1", SubRole: authzentities.SubRolePrimaryAdmin, Permissions: primary},
			{UserID: "sec-1", SubRole: authzentities.SubRoleSecondaryAdmin, Permissions: authzentities.DefaultSecondaryAdminPermissions()},
		},
	}
	principals := []authzentities.Principal{
		{UserID: "prim-1", Email: "primary@campus.test", Role: authzentities.RoleAdmin, OrganizationID: "org-1"},
		{UserID: "sec-1", Email: "secondary@campus.test", Role: authzentities.RoleAdmin, OrganizationID: "org-1"},
		{UserID: "teach-1", Email: "teacher@campus.test", Role: authzentities.RoleTeacher, OrganizationID: "org-1"},
	}

	authzModule.Store.SeedOrganization(org)
	adminModule.Store.SeedOrganization(org)
	for _, principal := range principals {
		authzModule.Store.SeedPrincipal(principal)
		adminModule.Store.SeedPrincipal(principal)
	}

	return New(authzModule, adminModule, nil, ":0")
}
