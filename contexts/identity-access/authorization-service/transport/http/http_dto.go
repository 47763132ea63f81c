package httptransport

// DecideRequest is the request body for one requirement evaluation.
// The principal itself comes from the authenticated caller headers.
type DecideRequest struct {
	MinRole            string   `json:"min_role,omitempty"`
	ExactRoles         []string `json:"exact_roles,omitempty"`
	OrganizationMember bool     `json:"organization_member,omitempty"`
	Capabilities       []string `json:"capabilities,omitempty"`
	PrimaryAdminOnly   bool     `json:"primary_admin_only,omitempty"`
}

// AuthorizationContextDTO mirrors the allow-side context payload.
type AuthorizationContextDTO struct {
	OrganizationID string          `json:"organization_id"`
	SubRole        string          `json:"sub_role"`
	Permissions    map[string]bool `json:"permissions"`
}

// DecisionResponse is the structured outcome returned for every evaluation.
type DecisionResponse struct {
	Allowed             bool                     `json:"allowed"`
	Reason              string                   `json:"reason"`
	MissingCapabilities []string                 `json:"missing_capabilities,omitempty"`
	Context             *AuthorizationContextDTO `json:"context,omitempty"`
}

// ErrorResponse is the transport error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
