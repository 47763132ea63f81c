package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	application "campus/contexts/identity-access/admin-management-service/application"
	"campus/contexts/identity-access/admin-management-service/application/commands"
	"campus/contexts/identity-access/admin-management-service/application/queries"
	httptransport "campus/contexts/identity-access/admin-management-service/transport/http"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
)

// Handler maps HTTP DTOs to the admin-management commands and queries.
// Header identity and idempotency keys are resolved by the server layer and
// passed in as plain strings.
type Handler struct {
	Commands commands.Service
	Queries  queries.Service
	Logger   *slog.Logger
}

func (h Handler) CreateAdminHandler(
	ctx context.Context,
	idempotencyKey string,
	actorUserID string,
	orgID string,
	request httptransport.CreateAdminRequest,
) (httptransport.CreateAdminResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Debug("http create admin received",
		"event", "admin_mgmt_http_create_received",
		"module", "identity-access/admin-management-service",
		"layer", "transport",
		"actor_user_id", actorUserID,
		"org_id", orgID,
	)

	result, err := h.Commands.CreateSecondaryAdmin(ctx, idempotencyKey, actorUserID, commands.CreateSecondaryAdminCommand{
		OrgID:                orgID,
		Email:                request.Email,
		FullName:             request.FullName,
		RequestedPermissions: permissionsFromDTO(request.Permissions),
	})
	if err != nil {
		return httptransport.CreateAdminResponse{}, err
	}
	return httptransport.CreateAdminResponse{
		UserID:     result.Principal.UserID,
		Email:      result.Principal.Email,
		FullName:   result.Principal.FullName,
		Role:       string(result.Principal.Role),
		Membership: membershipToDTO(result.Membership),
		AuditLogID: result.AuditLogID,
		OrgVersion: result.OrgVersion,
	}, nil
}

func (h Handler) UpdatePermissionsHandler(
	ctx context.Context,
	idempotencyKey string,
	actorUserID string,
	orgID string,
	targetUserID string,
	request httptransport.UpdatePermissionsRequest,
) (httptransport.UpdatePermissionsResponse, error) {
	result, err := h.Commands.UpdateAdminPermissions(ctx, idempotencyKey, actorUserID, commands.UpdateAdminPermissionsCommand{
		OrgID:        orgID,
		TargetUserID: strings.TrimSpace(targetUserID),
		Permissions:  permissionsFromDTO(request.Permissions),
	})
	if err != nil {
		return httptransport.UpdatePermissionsResponse{}, err
	}
	return httptransport.UpdatePermissionsResponse{
		Membership: membershipToDTO(result.Membership),
		AuditLogID: result.AuditLogID,
		OrgVersion: result.OrgVersion,
	}, nil
}

func (h Handler) RemoveAdminHandler(
	ctx context.Context,
	idempotencyKey string,
	actorUserID string,
	orgID string,
	targetUserID string,
) (httptransport.RemoveAdminResponse, error) {
	result, err := h.Commands.RemoveAdmin(ctx, idempotencyKey, actorUserID, commands.RemoveAdminCommand{
		OrgID:        orgID,
		TargetUserID: strings.TrimSpace(targetUserID),
	})
	if err != nil {
		return httptransport.RemoveAdminResponse{}, err
	}
	return httptransport.RemoveAdminResponse{
		RemovedUserID: result.RemovedUserID,
		DemotedRole:   string(result.DemotedRole),
		AuditLogID:    result.AuditLogID,
		OrgVersion:    result.OrgVersion,
	}, nil
}

func (h Handler) ListAdminsHandler(
	ctx context.Context,
	actorUserID string,
	orgID string,
) (httptransport.AdminListResponse, error) {
	admins, err := h.Queries.ListAdmins(ctx, actorUserID, orgID)
	if err != nil {
		return httptransport.AdminListResponse{}, err
	}
	response := httptransport.AdminListResponse{
		Admins: make([]httptransport.AdminMembershipDTO, 0, len(admins)),
	}
	for _, membership := range admins {
		response.Admins = append(response.Admins, membershipToDTO(membership))
	}
	return response, nil
}

func (h Handler) ListAuditLogsHandler(
	ctx context.Context,
	actorUserID string,
	orgID string,
	limit int,
) (httptransport.AuditListResponse, error) {
	logs, err := h.Queries.ListAuditLogs(ctx, actorUserID, orgID, limit)
	if err != nil {
		return httptransport.AuditListResponse{}, err
	}
	response := httptransport.AuditListResponse{
		Logs: make([]httptransport.AuditLogDTO, 0, len(logs)),
	}
	for _, entry := range logs {
		response.Logs = append(response.Logs, httptransport.AuditLogDTO{
			AuditID:     entry.AuditID,
			ActorUserID: entry.ActorUserID,
			Action:      entry.Action,
			TargetID:    entry.TargetID,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return response, nil
}

func permissionsFromDTO(raw map[string]bool) authzentities.PermissionSet {
	if raw == nil {
		return nil
	}
	set := make(authzentities.PermissionSet, len(raw))
	for name, granted := range raw {
		set[authzentities.Capability(name)] = granted
	}
	return set
}

func membershipToDTO(membership authzentities.AdminMembership) httptransport.AdminMembershipDTO {
	permissions := make(map[string]bool, len(membership.Permissions))
	for capability, granted := range membership.Permissions {
		permissions[string(capability)] = granted
	}
	return httptransport.AdminMembershipDTO{
		UserID:      membership.UserID,
		SubRole:     string(membership.SubRole),
		Permissions: permissions,
		AddedAt:     membership.AddedAt,
		AddedBy:     membership.AddedBy,
	}
}
