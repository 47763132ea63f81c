package entities

import (
	"testing"
	"time"
)

func testOrg() Organization {
	primary := NewPermissionSet()
	for _, capability := range AllCapabilities() {
		primary[capability] = true
	}
	return Organization{
		OrgID:   "org-1",
		Name:    "North Campus",
		Version: 3,
		Admins: []AdminMembership{
			{UserID: "prim-1", SubRole: SubRolePrimaryAdmin, Permissions: primary},
			{UserID: "sec-1", SubRole: SubRoleSecondaryAdmin, Permissions: DefaultSecondaryAdminPermissions()},
		},
	}
}

func TestAppendSecondaryAdminSanitizesForcedCapabilities(t *testing.T) {
	org := testOrg()
	requested := PermissionSet{
		CapabilityManageAdmins:  true,
		CapabilityManageContent: true,
		CapabilityEnrollTeachers: true,
	}
	membership, err := org.AppendSecondaryAdmin("sec-2", requested, "prim-1", time.Now())
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if membership.Permissions.Grants(CapabilityManageAdmins) || membership.Permissions.Grants(CapabilityManageContent) {
		t.Fatalf("forced-false capabilities leaked into new membership: %+v", membership.Permissions)
	}
	if !membership.Permissions.Grants(CapabilityEnrollTeachers) {
		t.Fatal("requested grantable capability was dropped")
	}
	if membership.SubRole != SubRoleSecondaryAdmin {
		t.Fatalf("sub-role = %s", membership.SubRole)
	}
}

func TestAppendSecondaryAdminRejectsDuplicate(t *testing.T) {
	org := testOrg()
	if _, err := org.AppendSecondaryAdmin("sec-1", nil, "prim-1", time.Now()); err == nil {
		t.Fatal("expected duplicate membership error")
	}
	if len(org.Admins) != 2 {
		t.Fatalf("roster mutated on rejected append: %d members", len(org.Admins))
	}
}

func TestReplaceAdminPermissionsMergesOverExisting(t *testing.T) {
	org := testOrg()
	// A partial request: unspecified capabilities keep their existing grants.
	requested := PermissionSet{
		CapabilityEnrollTeachers: true,
		CapabilityManageContent:  true,
	}
	membership, err := org.ReplaceAdminPermissions("sec-1", requested)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !membership.Permissions.Grants(CapabilityEnrollTeachers) {
		t.Fatal("requested grant not applied")
	}
	if !membership.Permissions.Grants(CapabilityEnrollStudents) || !membership.Permissions.Grants(CapabilityManageClasses) {
		t.Fatal("existing grants lost during merge")
	}
	if membership.Permissions.Grants(CapabilityManageContent) {
		t.Fatal("forced-false capability granted through update")
	}
}

func TestReplaceAdminPermissionsPrimaryImmutable(t *testing.T) {
	org := testOrg()
	if _, err := org.ReplaceAdminPermissions("prim-1", PermissionSet{}); err == nil {
		t.Fatal("expected primary-immutable error")
	}
	if _, err := org.ReplaceAdminPermissions("ghost", PermissionSet{}); err == nil {
		t.Fatal("expected missing-membership error")
	}
}

func TestRemoveAdmin(t *testing.T) {
	org := testOrg()
	removed, err := org.RemoveAdmin("sec-1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.UserID != "sec-1" {
		t.Fatalf("removed %s", removed.UserID)
	}
	if len(org.Admins) != 1 {
		t.Fatalf("roster size = %d after removal", len(org.Admins))
	}
	if _, err := org.RemoveAdmin("prim-1"); err == nil {
		t.Fatal("expected primary-immutable error")
	}
}

func TestValidateDetectsIntegrityFaults(t *testing.T) {
	org := testOrg()
	if err := org.Validate(); err != nil {
		t.Fatalf("valid org reported fault: %v", err)
	}

	twoPrimaries := testOrg()
	twoPrimaries.Admins[1].SubRole = SubRolePrimaryAdmin
	if err := twoPrimaries.Validate(); err == nil {
		t.Fatal("two primaries passed validation")
	}

	forced := testOrg()
	forced.Admins[1].Permissions[CapabilityManageAdmins] = true
	if err := forced.Validate(); err == nil {
		t.Fatal("secondary holding a forced-false capability passed validation")
	}
}

func TestMergeSecondaryAdminPermissionsForcedLast(t *testing.T) {
	defaults := DefaultSecondaryAdminPermissions()
	defaults[CapabilityManageContent] = true // corrupt defaults on purpose
	merged := MergeSecondaryAdminPermissions(defaults, PermissionSet{CapabilityManageAdmins: true})
	if merged.Grants(CapabilityManageContent) || merged.Grants(CapabilityManageAdmins) {
		t.Fatalf("forced overrides did not run last: %+v", merged)
	}
	if !merged.Grants(CapabilityEnrollStudents) {
		t.Fatal("default grant lost in merge")
	}
}
