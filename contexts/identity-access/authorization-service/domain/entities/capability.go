package entities

// Capability is one named fine-grained admin permission flag.
// The set is closed; it is not extensible at runtime.
type Capability string

const (
	CapabilityEnrollStudents Capability = "canEnrollStudents"
	CapabilityEnrollTeachers Capability = "canEnrollTeachers"
	CapabilityManageClasses  Capability = "canManageClasses"
	CapabilityViewAnalytics  Capability = "canViewAnalytics"
	CapabilityManageContent  Capability = "canManageContent"
	CapabilityManageAdmins   Capability = "canManageAdmins"
)

// AllCapabilities returns the closed capability enumeration in stable order.
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityEnrollStudents,
		CapabilityEnrollTeachers,
		CapabilityManageClasses,
		CapabilityViewAnalytics,
		CapabilityManageContent,
		CapabilityManageAdmins,
	}
}

// IsValidCapability reports whether c belongs to the closed capability set.
func IsValidCapability(c Capability) bool {
	switch c {
	case CapabilityEnrollStudents, CapabilityEnrollTeachers, CapabilityManageClasses,
		CapabilityViewAnalytics, CapabilityManageContent, CapabilityManageAdmins:
		return true
	default:
		return false
	}
}

// PermissionSet maps every capability to an explicit grant flag.
type PermissionSet map[Capability]bool

// NewPermissionSet returns a set with every capability present and false.
func NewPermissionSet() PermissionSet {
	set := make(PermissionSet, len(AllCapabilities()))
	for _, capability := range AllCapabilities() {
		set[capability] = false
	}
	return set
}

// DefaultSecondaryAdminPermissions is the baseline grant for a freshly
// provisioned secondary admin. Callers pass it into provisioning explicitly
// so tests can substitute alternate defaults.
func DefaultSecondaryAdminPermissions() PermissionSet {
	set := NewPermissionSet()
	set[CapabilityEnrollStudents] = true
	set[CapabilityManageClasses] = true
	set[CapabilityViewAnalytics] = true
	return set
}

// Clone returns an independent copy with every capability key present.
func (p PermissionSet) Clone() PermissionSet {
	set := NewPermissionSet()
	for capability, granted := range p {
		if IsValidCapability(capability) {
			set[capability] = granted
		}
	}
	return set
}

// Grants reports whether the capability is explicitly granted.
func (p PermissionSet) Grants(c Capability) bool {
	return p[c]
}

// Missing returns the required capabilities not granted by the set,
// in the enumeration's stable order.
func (p PermissionSet) Missing(required []Capability) []Capability {
	want := make(map[Capability]struct{}, len(required))
	for _, capability := range required {
		want[capability] = struct{}{}
	}
	missing := make([]Capability, 0, len(required))
	for _, capability := range AllCapabilities() {
		if _, ok := want[capability]; !ok {
			continue
		}
		if !p.Grants(capability) {
			missing = append(missing, capability)
		}
	}
	return missing
}

// MergeSecondaryAdminPermissions builds a secondary admin permission set:
// defaults first, requested grants second, then the forced-false overrides
// last. The overrides always win; no input can grant canManageContent or
// canManageAdmins to a secondary admin.
func MergeSecondaryAdminPermissions(defaults PermissionSet, requested PermissionSet) PermissionSet {
	merged := defaults.Clone()
	for capability, granted := range requested {
		if IsValidCapability(capability) {
			merged[capability] = granted
		}
	}
	merged[CapabilityManageContent] = false
	merged[CapabilityManageAdmins] = false
	return merged
}

// ResourceKind is an abstract managed-resource category used to derive the
// capability an admin needs for it.
type ResourceKind string

const (
	ResourceStudent   ResourceKind = "student"
	ResourceTeacher   ResourceKind = "teacher"
	ResourceClass     ResourceKind = "class"
	ResourceSection   ResourceKind = "section"
	ResourceAdmin     ResourceKind = "admin"
	ResourceContent   ResourceKind = "content"
	ResourceAnalytics ResourceKind = "analytics"
)

// CapabilityForResource resolves the fixed resource-kind table. An unknown
// kind is a programming/configuration fault, not a per-request denial: the
// kind set is closed and known at deployment time.
func CapabilityForResource(kind ResourceKind) (Capability, bool) {
	switch kind {
	case ResourceStudent:
		return CapabilityEnrollStudents, true
	case ResourceTeacher:
		return CapabilityEnrollTeachers, true
	case ResourceClass, ResourceSection:
		return CapabilityManageClasses, true
	case ResourceAdmin:
		return CapabilityManageAdmins, true
	case ResourceContent:
		return CapabilityManageContent, true
	case ResourceAnalytics:
		return CapabilityViewAnalytics, true
	default:
		return "", false
	}
}
