package entities

import (
	"errors"
	"fmt"
	"time"
)

// Organization is the tenant aggregate owning its admin membership set.
// All mutations go through the methods below so the invariants (single
// primary admin, unique member, forced-false secondary capabilities) are
// re-validated before every persist, not trusted to call sites.
//
// Version supports optimistic concurrency on admin-set mutations: the store
// rejects a save whose expected version no longer matches.
type Organization struct {
	OrgID   string            `json:"org_id"`
	Name    string            `json:"name"`
	Version int64             `json:"version"`
	Admins  []AdminMembership `json:"admins"`
}

var (
	errDuplicateMembership = errors.New("organization already has an admin membership for this user")
	errMembershipMissing   = errors.New("organization has no admin membership for this user")
	errPrimaryImmutable    = errors.New("primary admin membership cannot be mutated")
)

// FindAdmin looks up the membership for userID.
func (o Organization) FindAdmin(userID string) (AdminMembership, bool) {
	for _, membership := range o.Admins {
		if membership.UserID == userID {
			return membership, true
		}
	}
	return AdminMembership{}, false
}

// PrimaryAdmin returns the single primary-admin membership. Zero or multiple
// primaries is a data-integrity fault, never a normal outcome.
func (o Organization) PrimaryAdmin() (AdminMembership, error) {
	var found *AdminMembership
	for i := range o.Admins {
		if o.Admins[i].IsPrimary() {
			if found != nil {
				return AdminMembership{}, fmt.Errorf("organization %s has multiple primary admins", o.OrgID)
			}
			found = &o.Admins[i]
		}
	}
	if found == nil {
		return AdminMembership{}, fmt.Errorf("organization %s has no primary admin", o.OrgID)
	}
	return *found, nil
}

// AppendSecondaryAdmin adds a secondary-admin membership, sanitizing its
// permission set through the forced-false overrides.
func (o *Organization) AppendSecondaryAdmin(userID string, permissions PermissionSet, addedBy string, now time.Time) (AdminMembership, error) {
	if _, exists := o.FindAdmin(userID); exists {
		return AdminMembership{}, errDuplicateMembership
	}
	membership := AdminMembership{
		UserID:      userID,
		SubRole:     SubRoleSecondaryAdmin,
		Permissions: MergeSecondaryAdminPermissions(NewPermissionSet(), permissions),
		AddedAt:     now.UTC(),
		AddedBy:     addedBy,
	}
	o.Admins = append(o.Admins, membership)
	if err := o.Validate(); err != nil {
		o.Admins = o.Admins[:len(o.Admins)-1]
		return AdminMembership{}, err
	}
	return membership, nil
}

// ReplaceAdminPermissions swaps a secondary admin's permission set. The
// replacement passes through the forced-false overrides regardless of input.
func (o *Organization) ReplaceAdminPermissions(userID string, permissions PermissionSet) (AdminMembership, error) {
	for i := range o.Admins {
		if o.Admins[i].UserID != userID {
			continue
		}
		if o.Admins[i].IsPrimary() {
			return AdminMembership{}, errPrimaryImmutable
		}
		o.Admins[i].Permissions = MergeSecondaryAdminPermissions(o.Admins[i].Permissions, permissions)
		return o.Admins[i], nil
	}
	return AdminMembership{}, errMembershipMissing
}

// RemoveAdmin deletes a secondary admin's membership entry.
func (o *Organization) RemoveAdmin(userID string) (AdminMembership, error) {
	for i := range o.Admins {
		if o.Admins[i].UserID != userID {
			continue
		}
		if o.Admins[i].IsPrimary() {
			return AdminMembership{}, errPrimaryImmutable
		}
		removed := o.Admins[i]
		o.Admins = append(o.Admins[:i], o.Admins[i+1:]...)
		return removed, nil
	}
	return AdminMembership{}, errMembershipMissing
}

// Validate re-checks the aggregate invariants. A failure here signals a
// data-integrity fault and must not be reported as an authorization denial.
func (o Organization) Validate() error {
	seen := make(map[string]struct{}, len(o.Admins))
	primaries := 0
	for _, membership := range o.Admins {
		if _, dup := seen[membership.UserID]; dup {
			return fmt.Errorf("organization %s has duplicate admin memberships for user %s", o.OrgID, membership.UserID)
		}
		seen[membership.UserID] = struct{}{}

		switch membership.SubRole {
		case SubRolePrimaryAdmin:
			primaries++
		case SubRoleSecondaryAdmin:
			if membership.Permissions.Grants(CapabilityManageContent) || membership.Permissions.Grants(CapabilityManageAdmins) {
				return fmt.Errorf("organization %s secondary admin %s holds a forced-false capability", o.OrgID, membership.UserID)
			}
		default:
			return fmt.Errorf("organization %s admin %s has unknown sub-role %q", o.OrgID, membership.UserID, membership.SubRole)
		}
	}
	if primaries > 1 {
		return fmt.Errorf("organization %s has %d primary admins", o.OrgID, primaries)
	}
	return nil
}
