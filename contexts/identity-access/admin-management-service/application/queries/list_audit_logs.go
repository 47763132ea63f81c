package queries

import (
	"context"
	"strings"

	application "campus/contexts/identity-access/admin-management-service/application"
	domainerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	"campus/contexts/identity-access/admin-management-service/ports"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
)

const defaultAuditLimit = 100

// ListAuditLogs returns the organization's admin mutation trail, newest
// first. Only the primary admin (or superAdmin) may read it.
func (s Service) ListAuditLogs(ctx context.Context, actorUserID string, orgID string, limit int) ([]ports.AdminAuditLog, error) {
	if strings.TrimSpace(actorUserID) == "" || strings.TrimSpace(orgID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	if limit <= 0 || limit > defaultAuditLimit {
		limit = defaultAuditLimit
	}
	requirement := authzentities.Requirement{
		OrganizationMember: true,
		PrimaryAdminOnly:   true,
	}
	if err := s.authorizeViewer(ctx, actorUserID, orgID, requirement); err != nil {
		return nil, err
	}

	lookupCtx, cancel := s.boundedCtx(ctx)
	defer cancel()
	logs, err := s.Repository.ListAuditLogs(lookupCtx, orgID, limit)
	if err != nil {
		return nil, storeFault(err)
	}

	application.ResolveLogger(s.Logger).Debug("admin audit trail listed",
		"event", "admin_mgmt_audit_listed",
		"module", "identity-access/admin-management-service",
		"layer", "application",
		"org_id", orgID,
		"count", len(logs),
	)
	return logs, nil
}
