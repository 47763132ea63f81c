package services

import (
	"testing"
	"time"

	"campus/contexts/identity-access/authorization-service/domain/entities"
)

func fixtureOrg() entities.Organization {
	primaryPerms := entities.NewPermissionSet()
	for _, capability := range entities.AllCapabilities() {
		primaryPerms[capability] = true
	}
	return entities.Organization{
		OrgID:   "org-1",
		Name:    "North Campus",
		Version: 1,
		Admins: []entities.AdminMembership{
			{
				UserID:      "prim-1",
				SubRole:     entities.SubRolePrimaryAdmin,
				Permissions: primaryPerms,
				AddedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				UserID:      "sec-1",
				SubRole:     entities.SubRoleSecondaryAdmin,
				Permissions: entities.DefaultSecondaryAdminPermissions(),
				AddedAt:     time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
				AddedBy:     "prim-1",
			},
		},
	}
}

func adminPrincipal(userID string) *entities.Principal {
	return &entities.Principal{
		UserID:         userID,
		Role:           entities.RoleAdmin,
		OrganizationID: "org-1",
	}
}

func TestDecideUnauthenticated(t *testing.T) {
	req := entities.Requirement{MinRole: entities.RoleStudent}
	if d := Decide(nil, req, nil); d.Allowed || d.Reason != entities.ReasonUnauthenticated {
		t.Fatalf("nil principal: got %+v", d)
	}
	if d := Decide(&entities.Principal{}, req, nil); d.Allowed || d.Reason != entities.ReasonUnauthenticated {
		t.Fatalf("empty user id: got %+v", d)
	}
}

func TestDecideSuperAdminBypassesEverything(t *testing.T) {
	principal := &entities.Principal{UserID: "root-1", Role: entities.RoleSuperAdmin}
	req := entities.Requirement{
		ExactRoles:         []entities.Role{entities.RoleTeacher},
		OrganizationMember: true,
		PrimaryAdminOnly:   true,
		Capabilities:       entities.AllCapabilities(),
	}
	// No organization supplied at all: the bypass never consults one.
	decision := Decide(principal, req, nil)
	if !decision.Allowed || decision.Reason != entities.ReasonAllowed {
		t.Fatalf("superAdmin should pass any requirement, got %+v", decision)
	}
	if decision.Context != nil {
		t.Fatalf("superAdmin allow should carry no organization context, got %+v", decision.Context)
	}
}

func TestDecideWrongRoleBeforeOrganizationChain(t *testing.T) {
	teacher := &entities.Principal{UserID: "teach-1", Role: entities.RoleTeacher, OrganizationID: "org-1"}
	req := entities.Requirement{Capabilities: []entities.Capability{entities.CapabilityManageAdmins}}
	decision := Decide(teacher, req, nil)
	if decision.Allowed || decision.Reason != entities.ReasonWrongRole {
		t.Fatalf("teacher vs admin capability requirement: got %+v", decision)
	}
}

func TestDecideExplicitExactRoles(t *testing.T) {
	teacher := &entities.Principal{UserID: "teach-1", Role: entities.RoleTeacher}
	req := entities.Requirement{ExactRoles: []entities.Role{entities.RoleTeacher, entities.RoleAdmin}}
	if d := Decide(teacher, req, nil); !d.Allowed {
		t.Fatalf("teacher in exact role list: got %+v", d)
	}
	student := &entities.Principal{UserID: "stud-1", Role: entities.RoleStudent}
	if d := Decide(student, req, nil); d.Allowed || d.Reason != entities.ReasonWrongRole {
		t.Fatalf("student outside exact role list: got %+v", d)
	}
}

func TestDecideMinRole(t *testing.T) {
	student := &entities.Principal{UserID: "stud-1", Role: entities.RoleStudent}
	req := entities.Requirement{MinRole: entities.RoleTeacher}
	if d := Decide(student, req, nil); d.Allowed || d.Reason != entities.ReasonInsufficientRoleLevel {
		t.Fatalf("student vs teacher minimum: got %+v", d)
	}

	special := &entities.Principal{UserID: "sp-1", Role: entities.RoleSpecialUser}
	if d := Decide(special, entities.Requirement{MinRole: entities.RoleStudent}, nil); !d.Allowed {
		t.Fatalf("specialUser vs student minimum: got %+v", d)
	}
}

func TestDecideOrganizationChain(t *testing.T) {
	org := fixtureOrg()
	req := entities.Requirement{OrganizationMember: true}

	noOrg := &entities.Principal{UserID: "adm-x", Role: entities.RoleAdmin}
	if d := Decide(noOrg, req, nil); d.Reason != entities.ReasonNoOrganization {
		t.Fatalf("admin without org ref: got %+v", d)
	}

	if d := Decide(adminPrincipal("prim-1"), req, nil); d.Reason != entities.ReasonOrganizationNotFound {
		t.Fatalf("missing org record: got %+v", d)
	}

	other := fixtureOrg()
	other.OrgID = "org-2"
	if d := Decide(adminPrincipal("prim-1"), req, &other); d.Reason != entities.ReasonOrganizationNotFound {
		t.Fatalf("mismatched org record: got %+v", d)
	}

	if d := Decide(adminPrincipal("adm-stranger"), req, &org); d.Reason != entities.ReasonNotAnAdminOfOrganization {
		t.Fatalf("non-member admin: got %+v", d)
	}

	// Bare membership implies no role: a teacher walks the chain and is
	// turned away as a non-member, not on role grounds.
	teacher := &entities.Principal{UserID: "teach-1", Role: entities.RoleTeacher, OrganizationID: "org-1"}
	if d := Decide(teacher, req, &org); d.Reason != entities.ReasonNotAnAdminOfOrganization {
		t.Fatalf("teacher vs bare membership: got %+v", d)
	}
}

func TestDecidePrimaryAdminRequired(t *testing.T) {
	org := fixtureOrg()
	req := entities.Requirement{PrimaryAdminOnly: true}
	if d := Decide(adminPrincipal("sec-1"), req, &org); d.Reason != entities.ReasonPrimaryAdminRequired {
		t.Fatalf("secondary vs primary-only requirement: got %+v", d)
	}
	if d := Decide(adminPrincipal("prim-1"), req, &org); !d.Allowed {
		t.Fatalf("primary vs primary-only requirement: got %+v", d)
	}
}

func TestDecideMissingCapabilitiesExactSet(t *testing.T) {
	org := fixtureOrg()
	req := entities.Requirement{Capabilities: []entities.Capability{
		entities.CapabilityManageAdmins,
		entities.CapabilityManageContent,
		entities.CapabilityEnrollStudents,
	}}
	decision := Decide(adminPrincipal("sec-1"), req, &org)
	if decision.Allowed || decision.Reason != entities.ReasonMissingCapabilities {
		t.Fatalf("expected missing-capabilities denial, got %+v", decision)
	}
	want := []entities.Capability{entities.CapabilityManageContent, entities.CapabilityManageAdmins}
	if len(decision.Missing) != len(want) {
		t.Fatalf("missing set = %v, want %v", decision.Missing, want)
	}
	for i := range want {
		if decision.Missing[i] != want[i] {
			t.Fatalf("missing set = %v, want %v (stable order)", decision.Missing, want)
		}
	}
}

func TestDecideAllowCarriesClonedContext(t *testing.T) {
	org := fixtureOrg()
	req := entities.Requirement{Capabilities: []entities.Capability{entities.CapabilityViewAnalytics}}
	decision := Decide(adminPrincipal("sec-1"), req, &org)
	if !decision.Allowed {
		t.Fatalf("expected allow, got %+v", decision)
	}
	if decision.Context == nil || decision.Context.OrganizationID != "org-1" {
		t.Fatalf("context missing org id: %+v", decision.Context)
	}
	if decision.Context.SubRole != entities.SubRoleSecondaryAdmin {
		t.Fatalf("context sub-role = %s", decision.Context.SubRole)
	}

	decision.Context.Permissions[entities.CapabilityManageAdmins] = true
	if org.Admins[1].Permissions.Grants(entities.CapabilityManageAdmins) {
		t.Fatal("mutating the decision context leaked into the organization state")
	}
}
