package entities

// ReasonCode is the machine-checkable outcome class of a decision.
type ReasonCode string

const (
	ReasonAllowed                  ReasonCode = "allowed"
	ReasonUnauthenticated          ReasonCode = "unauthenticated"
	ReasonWrongRole                ReasonCode = "wrong_role"
	ReasonInsufficientRoleLevel    ReasonCode = "insufficient_role_level"
	ReasonNoOrganization           ReasonCode = "no_organization"
	ReasonOrganizationNotFound     ReasonCode = "organization_not_found"
	ReasonNotAnAdminOfOrganization ReasonCode = "not_an_admin_of_organization"
	ReasonPrimaryAdminRequired     ReasonCode = "primary_admin_required"
	ReasonMissingCapabilities      ReasonCode = "missing_capabilities"
)

// Requirement is a conjunction of authorization checks. Zero values mean the
// check is not part of the requirement.
type Requirement struct {
	MinRole            Role         `json:"min_role,omitempty"`
	ExactRoles         []Role       `json:"exact_roles,omitempty"`
	OrganizationMember bool         `json:"organization_member,omitempty"`
	Capabilities       []Capability `json:"capabilities,omitempty"`
	PrimaryAdminOnly   bool         `json:"primary_admin_only,omitempty"`
}

// OrganizationScoped reports whether the requirement needs the principal's
// organization state to be resolved.
func (r Requirement) OrganizationScoped() bool {
	return r.OrganizationMember || r.PrimaryAdminOnly || len(r.Capabilities) > 0
}

// ImpliesAdminRole reports whether the requirement can only ever be satisfied
// by an admin: capability and primary-standing checks read the admin
// membership set, so a non-admin is settled on role grounds before any store
// lookup. Bare organization membership carries no such implication.
func (r Requirement) ImpliesAdminRole() bool {
	return r.PrimaryAdminOnly || len(r.Capabilities) > 0
}

// AuthorizationContext carries the admin standing resolved during an allow,
// so callers can act on it without re-fetching organization state.
type AuthorizationContext struct {
	OrganizationID string        `json:"organization_id"`
	SubRole        SubRole       `json:"sub_role"`
	Permissions    PermissionSet `json:"permissions"`
}

// Decision is the structured outcome of one authorization evaluation.
// Denials always carry a reason code; missing-capability denials carry the
// exact missing set, never a bare "forbidden".
type Decision struct {
	Allowed bool                  `json:"allowed"`
	Reason  ReasonCode            `json:"reason"`
	Missing []Capability          `json:"missing_capabilities,omitempty"`
	Context *AuthorizationContext `json:"context,omitempty"`
}

// Deny builds a denial decision for the given reason.
func Deny(reason ReasonCode) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// DenyMissing builds a missing-capabilities denial carrying the missing set.
func DenyMissing(missing []Capability) Decision {
	return Decision{Allowed: false, Reason: ReasonMissingCapabilities, Missing: missing}
}

// Allow builds an allow decision carrying the resolved context (nil for
// decisions that never touched organization state).
func Allow(ctx *AuthorizationContext) Decision {
	return Decision{Allowed: true, Reason: ReasonAllowed, Context: ctx}
}
