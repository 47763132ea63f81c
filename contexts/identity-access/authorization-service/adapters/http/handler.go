package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	application "campus/contexts/identity-access/authorization-service/application"
	"campus/contexts/identity-access/authorization-service/application/queries"
	"campus/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "campus/contexts/identity-access/authorization-service/domain/errors"
	"campus/contexts/identity-access/authorization-service/ports"
	httptransport "campus/contexts/identity-access/authorization-service/transport/http"
)

// Handler maps HTTP DTOs to application queries. It resolves the caller
// header identity into a principal; everything past that point is the
// engine's business.
type Handler struct {
	Principals     ports.PrincipalStore
	Authorize      queries.AuthorizeUseCase
	ManageResource queries.CanManageResourceUseCase
	Logger         *slog.Logger
}

// DecideHandler evaluates one requirement for the calling principal.
func (h Handler) DecideHandler(
	ctx context.Context,
	userID string,
	request httptransport.DecideRequest,
) (httptransport.DecisionResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Debug("http authz decide received",
		"event", "authz_http_decide_received",
		"module", "identity-access/authorization-service",
		"layer", "transport",
		"user_id", userID,
	)

	requirement, err := requirementFromDTO(request)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}

	principal, err := h.resolvePrincipal(ctx, userID)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}

	decision, err := h.Authorize.Execute(ctx, queries.AuthorizeQuery{
		Principal:   principal,
		Requirement: requirement,
	})
	if err != nil {
		logger.Error("http authz decide failed",
			"event", "authz_http_decide_failed",
			"module", "identity-access/authorization-service",
			"layer", "transport",
			"user_id", userID,
			"error", err.Error(),
		)
		return httptransport.DecisionResponse{}, err
	}
	return decisionToDTO(decision), nil
}

// CheckResourceHandler evaluates the resource-kind capability shorthand.
func (h Handler) CheckResourceHandler(
	ctx context.Context,
	userID string,
	kind string,
) (httptransport.DecisionResponse, error) {
	logger := application.ResolveLogger(h.Logger)

	principal, err := h.resolvePrincipal(ctx, userID)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}

	decision, err := h.ManageResource.Execute(ctx, queries.CanManageResourceQuery{
		Principal: principal,
		Kind:      entities.ResourceKind(strings.TrimSpace(kind)),
	})
	if err != nil {
		logger.Error("http authz resource check failed",
			"event", "authz_http_resource_check_failed",
			"module", "identity-access/authorization-service",
			"layer", "transport",
			"user_id", userID,
			"resource_kind", kind,
			"error", err.Error(),
		)
		return httptransport.DecisionResponse{}, err
	}
	return decisionToDTO(decision), nil
}

// resolvePrincipal treats an unknown caller identity as an unauthenticated
// principal (nil), which the engine denies deterministically.
func (h Handler) resolvePrincipal(ctx context.Context, userID string) (*entities.Principal, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	principal, found, err := h.Principals.FindPrincipal(ctx, userID)
	if err != nil {
		return nil, domainerrors.ErrStoreUnavailable
	}
	if !found {
		return nil, nil
	}
	return &principal, nil
}

func requirementFromDTO(request httptransport.DecideRequest) (entities.Requirement, error) {
	requirement := entities.Requirement{
		OrganizationMember: request.OrganizationMember,
		PrimaryAdminOnly:   request.PrimaryAdminOnly,
	}
	if minRole := strings.TrimSpace(request.MinRole); minRole != "" {
		role := entities.Role(minRole)
		if !entities.IsValidRole(role) {
			return entities.Requirement{}, domainerrors.ErrInvalidRequest
		}
		requirement.MinRole = role
	}
	for _, raw := range request.ExactRoles {
		role := entities.Role(strings.TrimSpace(raw))
		if !entities.IsValidRole(role) {
			return entities.Requirement{}, domainerrors.ErrInvalidRequest
		}
		requirement.ExactRoles = append(requirement.ExactRoles, role)
	}
	for _, raw := range request.Capabilities {
		capability := entities.Capability(strings.TrimSpace(raw))
		if !entities.IsValidCapability(capability) {
			return entities.Requirement{}, domainerrors.ErrInvalidRequest
		}
		requirement.Capabilities = append(requirement.Capabilities, capability)
	}
	return requirement, nil
}

func decisionToDTO(decision entities.Decision) httptransport.DecisionResponse {
	response := httptransport.DecisionResponse{
		Allowed: decision.Allowed,
		Reason:  string(decision.Reason),
	}
	for _, capability := range decision.Missing {
		response.MissingCapabilities = append(response.MissingCapabilities, string(capability))
	}
	if decision.Context != nil {
		permissions := make(map[string]bool, len(decision.Context.Permissions))
		for capability, granted := range decision.Context.Permissions {
			permissions[string(capability)] = granted
		}
		response.Context = &httptransport.AuthorizationContextDTO{
			OrganizationID: decision.Context.OrganizationID,
			SubRole:        string(decision.Context.SubRole),
			Permissions:    permissions,
		}
	}
	return response
}
