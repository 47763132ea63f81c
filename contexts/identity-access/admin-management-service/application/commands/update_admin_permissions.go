package commands

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	domainerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	"campus/contexts/identity-access/admin-management-service/ports"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
)

// UpdateAdminPermissionsCommand replaces a secondary admin's grants. The new
// set merges into the target's current set; canManageContent and
// canManageAdmins are forced false regardless of the request.
type UpdateAdminPermissionsCommand struct {
	OrgID        string
	TargetUserID string
	Permissions  authzentities.PermissionSet
}

type UpdateAdminPermissionsResult struct {
	Membership authzentities.AdminMembership `json:"membership"`
	AuditLogID string                        `json:"audit_log_id"`
	OrgVersion int64                         `json:"org_version"`
}

func (s Service) UpdateAdminPermissions(
	ctx context.Context,
	idempotencyKey string,
	actorUserID string,
	cmd UpdateAdminPermissionsCommand,
) (UpdateAdminPermissionsResult, error) {
	var out UpdateAdminPermissionsResult
	if strings.TrimSpace(actorUserID) == "" ||
		strings.TrimSpace(cmd.OrgID) == "" ||
		strings.TrimSpace(cmd.TargetUserID) == "" {
		return out, domainerrors.ErrInvalidRequest
	}
	if err := validPermissionKeys(cmd.Permissions); err != nil {
		return out, err
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	requested, _ := json.Marshal(cmd.Permissions)
	requestHash := hashStrings("admin_update_permissions", actorUserID, cmd.OrgID, cmd.TargetUserID, string(requested))
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			result, err := s.replacePermissions(ctx, actorUserID, cmd)
			if err != nil {
				return nil, err
			}
			return json.Marshal(result)
		},
	)
	return out, err
}

func (s Service) replacePermissions(
	ctx context.Context,
	actorUserID string,
	cmd UpdateAdminPermissionsCommand,
) (UpdateAdminPermissionsResult, error) {
	var zero UpdateAdminPermissionsResult

	var lastErr error
	for attempt := 0; attempt < s.writeAttempts(); attempt++ {
		org, err := s.authorizeActor(ctx, actorUserID, cmd.OrgID, primaryAdminRequirement())
		if err != nil {
			return zero, err
		}

		if cmd.TargetUserID == actorUserID {
			return zero, domainerrors.ErrCannotModifySelf
		}
		target, found := org.FindAdmin(cmd.TargetUserID)
		if !found {
			return zero, domainerrors.ErrAdminNotFound
		}
		if target.IsPrimary() {
			return zero, domainerrors.ErrCannotModifyPrimaryAdmin
		}

		expectedVersion := org.Version
		membership, err := org.ReplaceAdminPermissions(cmd.TargetUserID, cmd.Permissions)
		if err != nil {
			return zero, errors.Join(domainerrors.ErrIntegrityViolation, err)
		}

		auditID, err := s.newID(ctx)
		if err != nil {
			return zero, err
		}
		outboxID, err := s.newID(ctx)
		if err != nil {
			return zero, err
		}

		result, err := s.Repository.UpdateAdminPermissions(ctx, ports.UpdateAdminPermissionsInput{
			OrgID:           cmd.OrgID,
			ExpectedVersion: expectedVersion,
			TargetUserID:    cmd.TargetUserID,
			Permissions:     membership.Permissions,
			ActorUserID:     actorUserID,
			AuditLogID:      auditID,
			OutboxID:        outboxID,
			UpdatedAt:       s.now(),
		})
		if errors.Is(err, domainerrors.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return zero, err
		}

		s.logger().Info("admin permissions replaced",
			"event", "admin_mgmt_permissions_updated",
			"module", "identity-access/admin-management-service",
			"layer", "application",
			"org_id", cmd.OrgID,
			"actor_user_id", actorUserID,
			"user_id", cmd.TargetUserID,
		)
		return UpdateAdminPermissionsResult{
			Membership: result.Membership,
			AuditLogID: result.AuditLogID,
			OrgVersion: result.NewVersion,
		}, nil
	}
	return zero, lastErr
}
