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

// CreateSecondaryAdminCommand provisions a new secondary-admin account inside
// the actor's organization. Requested permissions are optional; defaults
// apply first, the request second, and the forced-false overrides always win.
type CreateSecondaryAdminCommand struct {
	OrgID                string
	Email                string
	FullName             string
	RequestedPermissions authzentities.PermissionSet
}

// CreateSecondaryAdminResult is the replayable command outcome. The one-time
// credential secret is delivered only through the notifier, never stored or
// returned, so an idempotent replay cannot leak it.
type CreateSecondaryAdminResult struct {
	Principal  authzentities.Principal       `json:"principal"`
	Membership authzentities.AdminMembership `json:"membership"`
	AuditLogID string                        `json:"audit_log_id"`
	OrgVersion int64                         `json:"org_version"`
}

func (s Service) CreateSecondaryAdmin(
	ctx context.Context,
	idempotencyKey string,
	actorUserID string,
	cmd CreateSecondaryAdminCommand,
) (CreateSecondaryAdminResult, error) {
	var out CreateSecondaryAdminResult
	if strings.TrimSpace(actorUserID) == "" ||
		strings.TrimSpace(cmd.OrgID) == "" ||
		strings.TrimSpace(cmd.FullName) == "" ||
		!validEmail(cmd.Email) {
		return out, domainerrors.ErrInvalidRequest
	}
	if err := validPermissionKeys(cmd.RequestedPermissions); err != nil {
		return out, err
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	requested, _ := json.Marshal(cmd.RequestedPermissions)
	requestHash := hashStrings("admin_create_secondary", actorUserID, cmd.OrgID, strings.ToLower(cmd.Email), cmd.FullName, string(requested))
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			result, err := s.provisionSecondaryAdmin(ctx, actorUserID, cmd)
			if err != nil {
				return nil, err
			}
			return json.Marshal(result)
		},
	)
	return out, err
}

func (s Service) provisionSecondaryAdmin(
	ctx context.Context,
	actorUserID string,
	cmd CreateSecondaryAdminCommand,
) (CreateSecondaryAdminResult, error) {
	var zero CreateSecondaryAdminResult

	var lastErr error
	for attempt := 0; attempt < s.writeAttempts(); attempt++ {
		org, err := s.authorizeActor(ctx, actorUserID, cmd.OrgID, createSecondaryAdminRequirement())
		if err != nil {
			return zero, err
		}

		if err := s.rejectDuplicateEmail(ctx, cmd.Email); err != nil {
			return zero, err
		}

		userID, err := s.newID(ctx)
		if err != nil {
			return zero, err
		}
		auditID, err := s.newID(ctx)
		if err != nil {
			return zero, err
		}
		outboxID, err := s.newID(ctx)
		if err != nil {
			return zero, err
		}

		now := s.now()
		permissions := authzentities.MergeSecondaryAdminPermissions(
			authzentities.DefaultSecondaryAdminPermissions(),
			cmd.RequestedPermissions,
		)
		expectedVersion := org.Version
		membership, err := org.AppendSecondaryAdmin(userID, permissions, actorUserID, now)
		if err != nil {
			return zero, errors.Join(domainerrors.ErrIntegrityViolation, err)
		}

		secret, err := s.Credentials.Generate(ctx)
		if err != nil {
			return zero, err
		}
		credentialHash, err := s.Credentials.Hash(secret)
		if err != nil {
			return zero, err
		}

		principal := authzentities.Principal{
			UserID:         userID,
			Email:          strings.ToLower(strings.TrimSpace(cmd.Email)),
			FullName:       strings.TrimSpace(cmd.FullName),
			Role:           authzentities.RoleAdmin,
			OrganizationID: cmd.OrgID,
		}
		result, err := s.Repository.CreateSecondaryAdmin(ctx, ports.CreateSecondaryAdminInput{
			OrgID:           cmd.OrgID,
			ExpectedVersion: expectedVersion,
			Principal:       principal,
			CredentialHash:  credentialHash,
			Membership:      membership,
			ActorUserID:     actorUserID,
			AuditLogID:      auditID,
			OutboxID:        outboxID,
			CreatedAt:       now,
		})
		if errors.Is(err, domainerrors.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return zero, err
		}

		s.logger().Info("secondary admin provisioned",
			"event", "admin_mgmt_secondary_admin_created",
			"module", "identity-access/admin-management-service",
			"layer", "application",
			"org_id", cmd.OrgID,
			"actor_user_id", actorUserID,
			"user_id", result.Principal.UserID,
		)
		s.notifyProvisioned(ctx, result.Principal, secret)

		return CreateSecondaryAdminResult{
			Principal:  result.Principal,
			Membership: result.Membership,
			AuditLogID: result.AuditLogID,
			OrgVersion: result.NewVersion,
		}, nil
	}
	return zero, lastErr
}

func (s Service) rejectDuplicateEmail(ctx context.Context, email string) error {
	lookupCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	_, exists, err := s.Repository.FindPrincipalByEmail(lookupCtx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return storeFault(err)
	}
	if exists {
		return domainerrors.ErrDuplicateEmail
	}
	return nil
}

// notifyProvisioned delivers the one-time credential. Delivery failure never
// fails the mutation: the account exists either way.
func (s Service) notifyProvisioned(ctx context.Context, principal authzentities.Principal, secret string) {
	if s.Notifier == nil {
		return
	}
	delivered, err := s.Notifier.Notify(ctx, ports.NotificationInput{
		Address:  principal.Email,
		Template: "secondary_admin_invite",
		Payload: map[string]string{
			"full_name":        principal.FullName,
			"org_id":           principal.OrganizationID,
			"temporary_secret": secret,
		},
	})
	if err != nil || !delivered {
		s.logger().Warn("secondary admin invite delivery failed",
			"event", "admin_mgmt_invite_delivery_failed",
			"module", "identity-access/admin-management-service",
			"layer", "application",
			"user_id", principal.UserID,
			"delivered", delivered,
			"error", errString(err),
		)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func validEmail(email string) bool {
	trimmed := strings.TrimSpace(email)
	at := strings.Index(trimmed, "@")
	return at > 0 && at < len(trimmed)-1
}

func validPermissionKeys(set authzentities.PermissionSet) error {
	for capability := range set {
		if !authzentities.IsValidCapability(capability) {
			return domainerrors.ErrInvalidRequest
		}
	}
	return nil
}
