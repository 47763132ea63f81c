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

// RemoveAdminCommand removes a secondary admin from the organization.
// Removal demotes the principal to specialUser and clears its organization
// reference in the same store transaction as the membership delete.
type RemoveAdminCommand struct {
	OrgID        string
	TargetUserID string
}

type RemoveAdminResult struct {
	RemovedUserID string                        `json:"removed_user_id"`
	DemotedRole   authzentities.Role            `json:"demoted_role"`
	Membership    authzentities.AdminMembership `json:"membership"`
	AuditLogID    string                        `json:"audit_log_id"`
	OrgVersion    int64                         `json:"org_version"`
}

func (s Service) RemoveAdmin(
	ctx context.Context,
	idempotencyKey string,
	actorUserID string,
	cmd RemoveAdminCommand,
) (RemoveAdminResult, error) {
	var out RemoveAdminResult
	if strings.TrimSpace(actorUserID) == "" ||
		strings.TrimSpace(cmd.OrgID) == "" ||
		strings.TrimSpace(cmd.TargetUserID) == "" {
		return out, domainerrors.ErrInvalidRequest
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	requestHash := hashStrings("admin_remove", actorUserID, cmd.OrgID, cmd.TargetUserID)
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			result, err := s.removeAdmin(ctx, actorUserID, cmd)
			if err != nil {
				return nil, err
			}
			return json.Marshal(result)
		},
	)
	return out, err
}

func (s Service) removeAdmin(
	ctx context.Context,
	actorUserID string,
	cmd RemoveAdminCommand,
) (RemoveAdminResult, error) {
	var zero RemoveAdminResult

	var lastErr error
	for attempt := 0; attempt < s.writeAttempts(); attempt++ {
		org, err := s.authorizeActor(ctx, actorUserID, cmd.OrgID, primaryAdminRequirement())
		if err != nil {
			return zero, err
		}

		if cmd.TargetUserID == actorUserID {
			return zero, domainerrors.ErrCannotRemoveSelf
		}
		target, found := org.FindAdmin(cmd.TargetUserID)
		if !found {
			return zero, domainerrors.ErrAdminNotFound
		}
		if target.IsPrimary() {
			return zero, domainerrors.ErrCannotRemovePrimaryAdmin
		}

		expectedVersion := org.Version
		removed, err := org.RemoveAdmin(cmd.TargetUserID)
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

		result, err := s.Repository.RemoveAdmin(ctx, ports.RemoveAdminInput{
			OrgID:           cmd.OrgID,
			ExpectedVersion: expectedVersion,
			TargetUserID:    cmd.TargetUserID,
			DemotedRole:     authzentities.RoleSpecialUser,
			ActorUserID:     actorUserID,
			AuditLogID:      auditID,
			OutboxID:        outboxID,
			RemovedAt:       s.now(),
		})
		if errors.Is(err, domainerrors.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return zero, err
		}

		s.logger().Info("secondary admin removed",
			"event", "admin_mgmt_admin_removed",
			"module", "identity-access/admin-management-service",
			"layer", "application",
			"org_id", cmd.OrgID,
			"actor_user_id", actorUserID,
			"user_id", cmd.TargetUserID,
		)
		return RemoveAdminResult{
			RemovedUserID: cmd.TargetUserID,
			DemotedRole:   result.Principal.Role,
			Membership:    removed,
			AuditLogID:    result.AuditLogID,
			OrgVersion:    result.NewVersion,
		}, nil
	}
	return zero, lastErr
}
