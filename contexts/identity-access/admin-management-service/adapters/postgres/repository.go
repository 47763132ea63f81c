package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	domainerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	"campus/contexts/identity-access/admin-management-service/ports"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
	"campus/internal/shared/events"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolationCode = "23505"

// Repository is the postgres write adapter for the organization admin set.
// Every mutation runs in one transaction: the version-checked organization
// bump, the row changes, the audit entry, and the outbox record commit or
// roll back together.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetOrganization(ctx context.Context, orgID string) (authzentities.Organization, bool, error) {
	var orgRow organizationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", orgID).
		First(&orgRow).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authzentities.Organization{}, false, nil
		}
		return authzentities.Organization{}, false, r.logError("admin_repo_get_org_failed", err, "org_id", orgID)
	}

	var memberRows []adminMembershipModel
	err = r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("added_at ASC").
		Find(&memberRows).
		Error
	if err != nil {
		return authzentities.Organization{}, false, r.logError("admin_repo_list_members_failed", err, "org_id", orgID)
	}

	org := orgRow.toEntity()
	org.Admins = make([]authzentities.AdminMembership, 0, len(memberRows))
	for _, row := range memberRows {
		org.Admins = append(org.Admins, row.toEntity())
	}
	return org, true, nil
}

func (r *Repository) FindPrincipal(ctx context.Context, userID string) (authzentities.Principal, bool, error) {
	var row principalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authzentities.Principal{}, false, nil
		}
		return authzentities.Principal{}, false, r.logError("admin_repo_find_principal_failed", err, "user_id", userID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) FindPrincipalByEmail(ctx context.Context, email string) (authzentities.Principal, bool, error) {
	var row principalModel
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authzentities.Principal{}, false, nil
		}
		return authzentities.Principal{}, false, r.logError("admin_repo_find_principal_by_email_failed", err, "email", email)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) CreateSecondaryAdmin(ctx context.Context, input ports.CreateSecondaryAdminInput) (ports.AdminMutationResult, error) {
	var result ports.AdminMutationResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpOrganizationVersion(tx, input.OrgID, input.ExpectedVersion); err != nil {
			return err
		}
		if err := tx.Create(principalRow(input.Principal)).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateEmail
			}
			return err
		}
		if err := tx.Create(&adminCredentialModel{
			UserID:       input.Principal.UserID,
			PasswordHash: input.CredentialHash,
			CreatedAt:    input.CreatedAt.UTC(),
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(membershipRow(input.OrgID, input.Membership)).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrIntegrityViolation
			}
			return err
		}
		if err := writeAudit(tx, ports.AdminAuditLog{
			AuditID:     input.AuditLogID,
			OrgID:       input.OrgID,
			ActorUserID: input.ActorUserID,
			Action:      ports.AuditActionSecondaryAdminCreated,
			TargetID:    input.Principal.UserID,
			CreatedAt:   input.CreatedAt.UTC(),
		}); err != nil {
			return err
		}
		if err := writeOutbox(tx, input.OutboxID, ports.EventTypeSecondaryAdminCreated, input.OrgID, input.Principal.UserID, input.CreatedAt, map[string]any{
			"user_id":  input.Principal.UserID,
			"sub_role": string(input.Membership.SubRole),
		}); err != nil {
			return err
		}
		result = ports.AdminMutationResult{
			Membership: input.Membership,
			Principal:  input.Principal,
			AuditLogID: input.AuditLogID,
			NewVersion: input.ExpectedVersion + 1,
		}
		return nil
	})
	if err != nil {
		return ports.AdminMutationResult{}, r.classify("admin_repo_create_secondary_failed", err, "org_id", input.OrgID)
	}
	return result, nil
}

func (r *Repository) UpdateAdminPermissions(ctx context.Context, input ports.UpdateAdminPermissionsInput) (ports.AdminMutationResult, error) {
	var result ports.AdminMutationResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpOrganizationVersion(tx, input.OrgID, input.ExpectedVersion); err != nil {
			return err
		}

		var row adminMembershipModel
		err := tx.Where("org_id = ? AND user_id = ?", input.OrgID, input.TargetUserID).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrAdminNotFound
			}
			return err
		}
		updated := membershipRow(input.OrgID, authzentities.AdminMembership{
			UserID:      input.TargetUserID,
			SubRole:     authzentities.SubRole(row.SubRole),
			Permissions: input.Permissions,
			AddedAt:     row.AddedAt,
			AddedBy:     row.AddedBy,
		})
		if err := tx.Model(&adminMembershipModel{}).
			Where("org_id = ? AND user_id = ?", input.OrgID, input.TargetUserID).
			Updates(map[string]any{
				"can_enroll_students": updated.CanEnrollStudents,
				"can_enroll_teachers": updated.CanEnrollTeachers,
				"can_manage_classes":  updated.CanManageClasses,
				"can_view_analytics":  updated.CanViewAnalytics,
				"can_manage_content":  updated.CanManageContent,
				"can_manage_admins":   updated.CanManageAdmins,
			}).
			Error; err != nil {
			return err
		}
		if err := writeAudit(tx, ports.AdminAuditLog{
			AuditID:     input.AuditLogID,
			OrgID:       input.OrgID,
			ActorUserID: input.ActorUserID,
			Action:      ports.AuditActionPermissionsUpdated,
			TargetID:    input.TargetUserID,
			CreatedAt:   input.UpdatedAt.UTC(),
		}); err != nil {
			return err
		}
		if err := writeOutbox(tx, input.OutboxID, ports.EventTypeAdminPermissionsUpdated, input.OrgID, input.TargetUserID, input.UpdatedAt, map[string]any{
			"user_id":     input.TargetUserID,
			"permissions": input.Permissions,
		}); err != nil {
			return err
		}
		result = ports.AdminMutationResult{
			Membership: updated.toEntity(),
			AuditLogID: input.AuditLogID,
			NewVersion: input.ExpectedVersion + 1,
		}
		return nil
	})
	if err != nil {
		return ports.AdminMutationResult{}, r.classify("admin_repo_update_permissions_failed", err, "org_id", input.OrgID, "user_id", input.TargetUserID)
	}
	return result, nil
}

func (r *Repository) RemoveAdmin(ctx context.Context, input ports.RemoveAdminInput) (ports.AdminMutationResult, error) {
	var result ports.AdminMutationResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpOrganizationVersion(tx, input.OrgID, input.ExpectedVersion); err != nil {
			return err
		}

		var row adminMembershipModel
		err := tx.Where("org_id = ? AND user_id = ?", input.OrgID, input.TargetUserID).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrAdminNotFound
			}
			return err
		}
		if err := tx.Where("org_id = ? AND user_id = ?", input.OrgID, input.TargetUserID).
			Delete(&adminMembershipModel{}).
			Error; err != nil {
			return err
		}
		// Demotion rides the same transaction: the membership delete and the
		// principal's role change land atomically.
		if err := tx.Model(&principalModel{}).
			Where("id = ?", input.TargetUserID).
			Updates(map[string]any{
				"role":            string(input.DemotedRole),
				"organization_id": "",
			}).
			Error; err != nil {
			return err
		}
		if err := writeAudit(tx, ports.AdminAuditLog{
			AuditID:     input.AuditLogID,
			OrgID:       input.OrgID,
			ActorUserID: input.ActorUserID,
			Action:      ports.AuditActionAdminRemoved,
			TargetID:    input.TargetUserID,
			CreatedAt:   input.RemovedAt.UTC(),
		}); err != nil {
			return err
		}
		if err := writeOutbox(tx, input.OutboxID, ports.EventTypeAdminRemoved, input.OrgID, input.TargetUserID, input.RemovedAt, map[string]any{
			"user_id":      input.TargetUserID,
			"demoted_role": string(input.DemotedRole),
		}); err != nil {
			return err
		}

		var principalRowAfter principalModel
		if err := tx.Where("id = ?", input.TargetUserID).First(&principalRowAfter).Error; err != nil {
			return err
		}
		result = ports.AdminMutationResult{
			Membership: row.toEntity(),
			Principal:  principalRowAfter.toEntity(),
			AuditLogID: input.AuditLogID,
			NewVersion: input.ExpectedVersion + 1,
		}
		return nil
	})
	if err != nil {
		return ports.AdminMutationResult{}, r.classify("admin_repo_remove_admin_failed", err, "org_id", input.OrgID, "user_id", input.TargetUserID)
	}
	return result, nil
}

func (r *Repository) ListAdmins(ctx context.Context, orgID string) ([]authzentities.AdminMembership, error) {
	var rows []adminMembershipModel
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("added_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("admin_repo_list_admins_failed", err, "org_id", orgID)
	}
	admins := make([]authzentities.AdminMembership, 0, len(rows))
	for _, row := range rows {
		admins = append(admins, row.toEntity())
	}
	return admins, nil
}

func (r *Repository) ListAuditLogs(ctx context.Context, orgID string, limit int) ([]ports.AdminAuditLog, error) {
	var rows []adminAuditLogModel
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("admin_repo_list_audit_failed", err, "org_id", orgID)
	}
	logs := make([]ports.AdminAuditLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, ports.AdminAuditLog{
			AuditID:     row.ID,
			OrgID:       row.OrgID,
			ActorUserID: row.ActorUserID,
			Action:      row.Action,
			TargetID:    row.TargetID,
			CreatedAt:   row.CreatedAt.UTC(),
		})
	}
	return logs, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("admin_repo_idempotency_get_failed", err)
	}
	if now.After(row.ExpiresAt) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		Payload:     row.Payload,
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		Payload:     record.Payload,
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
	if err != nil {
		return r.logError("admin_repo_idempotency_put_failed", err)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", "pending").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("admin_repo_outbox_list_failed", err)
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:  row.ID,
			EventType: row.EventType,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Updates(map[string]any{
			"status":       "published",
			"published_at": publishedAt.UTC(),
		}).
		Error
	if err != nil {
		return r.logError("admin_repo_outbox_mark_failed", err, "outbox_id", outboxID)
	}
	return nil
}

// bumpOrganizationVersion is the optimistic-concurrency gate: zero affected
// rows means the expected version is stale and the caller must re-read.
func bumpOrganizationVersion(tx *gorm.DB, orgID string, expectedVersion int64) error {
	res := tx.Model(&organizationModel{}).
		Where("id = ? AND version = ?", orgID, expectedVersion).
		Update("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrVersionConflict
	}
	return nil
}

func writeAudit(tx *gorm.DB, entry ports.AdminAuditLog) error {
	return tx.Create(&adminAuditLogModel{
		ID:          entry.AuditID,
		OrgID:       entry.OrgID,
		ActorUserID: entry.ActorUserID,
		Action:      entry.Action,
		TargetID:    entry.TargetID,
		CreatedAt:   entry.CreatedAt,
	}).Error
}

func writeOutbox(tx *gorm.DB, outboxID, eventType, orgID, entityID string, occurredAt time.Time, payload map[string]any) error {
	payload["org_id"] = orgID
	envelope := events.Envelope{
		EventID:        outboxID,
		EventType:      eventType,
		SourceService:  "admin-management-service",
		OccurredAtUTC:  occurredAt.UTC(),
		CorrelationID:  outboxID,
		EntityType:     "organization_admin",
		EntityID:       entityID,
		PayloadVersion: 1,
		Payload:        payload,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return tx.Create(&outboxModel{
		ID:        outboxID,
		EventType: eventType,
		Payload:   raw,
		Status:    "pending",
		CreatedAt: occurredAt.UTC(),
	}).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// classify keeps domain sentinels intact and logs everything else.
func (r *Repository) classify(event string, err error, args ...any) error {
	switch {
	case errors.Is(err, domainerrors.ErrVersionConflict),
		errors.Is(err, domainerrors.ErrDuplicateEmail),
		errors.Is(err, domainerrors.ErrAdminNotFound),
		errors.Is(err, domainerrors.ErrIntegrityViolation):
		return err
	default:
		return r.logError(event, err, args...)
	}
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "identity-access/admin-management-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("admin management repository operation failed", fields...)
	return err
}

type organizationModel struct {
	ID      string `gorm:"column:id;primaryKey"`
	Name    string `gorm:"column:name"`
	Version int64  `gorm:"column:version"`
}

func (organizationModel) TableName() string {
	return "organizations"
}

func (m organizationModel) toEntity() authzentities.Organization {
	return authzentities.Organization{
		OrgID:   m.ID,
		Name:    m.Name,
		Version: m.Version,
	}
}

type adminMembershipModel struct {
	OrgID             string    `gorm:"column:org_id;primaryKey"`
	UserID            string    `gorm:"column:user_id;primaryKey"`
	SubRole           string    `gorm:"column:sub_role"`
	CanEnrollStudents bool      `gorm:"column:can_enroll_students"`
	CanEnrollTeachers bool      `gorm:"column:can_enroll_teachers"`
	CanManageClasses  bool      `gorm:"column:can_manage_classes"`
	CanViewAnalytics  bool      `gorm:"column:can_view_analytics"`
	CanManageContent  bool      `gorm:"column:can_manage_content"`
	CanManageAdmins   bool      `gorm:"column:can_manage_admins"`
	AddedAt           time.Time `gorm:"column:added_at"`
	AddedBy           string    `gorm:"column:added_by"`
}

func (adminMembershipModel) TableName() string {
	return "admin_memberships"
}

func membershipRow(orgID string, membership authzentities.AdminMembership) *adminMembershipModel {
	return &adminMembershipModel{
		OrgID:             orgID,
		UserID:            membership.UserID,
		SubRole:           string(membership.SubRole),
		CanEnrollStudents: membership.Permissions.Grants(authzentities.CapabilityEnrollStudents),
		CanEnrollTeachers: membership.Permissions.Grants(authzentities.CapabilityEnrollTeachers),
		CanManageClasses:  membership.Permissions.Grants(authzentities.CapabilityManageClasses),
		CanViewAnalytics:  membership.Permissions.Grants(authzentities.CapabilityViewAnalytics),
		CanManageContent:  membership.Permissions.Grants(authzentities.CapabilityManageContent),
		CanManageAdmins:   membership.Permissions.Grants(authzentities.CapabilityManageAdmins),
		AddedAt:           membership.AddedAt.UTC(),
		AddedBy:           membership.AddedBy,
	}
}

func (m adminMembershipModel) toEntity() authzentities.AdminMembership {
	permissions := authzentities.NewPermissionSet()
	permissions[authzentities.CapabilityEnrollStudents] = m.CanEnrollStudents
	permissions[authzentities.CapabilityEnrollTeachers] = m.CanEnrollTeachers
	permissions[authzentities.CapabilityManageClasses] = m.CanManageClasses
	permissions[authzentities.CapabilityViewAnalytics] = m.CanViewAnalytics
	permissions[authzentities.CapabilityManageContent] = m.CanManageContent
	permissions[authzentities.CapabilityManageAdmins] = m.CanManageAdmins
	return authzentities.AdminMembership{
		UserID:      m.UserID,
		SubRole:     authzentities.SubRole(m.SubRole),
		Permissions: permissions,
		AddedAt:     m.AddedAt.UTC(),
		AddedBy:     m.AddedBy,
	}
}

type principalModel struct {
	ID             string `gorm:"column:id;primaryKey"`
	Email          string `gorm:"column:email"`
	FullName       string `gorm:"column:full_name"`
	Role           string `gorm:"column:role"`
	OrganizationID string `gorm:"column:organization_id"`
}

func (principalModel) TableName() string {
	return "principals"
}

func principalRow(principal authzentities.Principal) *principalModel {
	return &principalModel{
		ID:             principal.UserID,
		Email:          principal.Email,
		FullName:       principal.FullName,
		Role:           string(principal.Role),
		OrganizationID: principal.OrganizationID,
	}
}

func (m principalModel) toEntity() authzentities.Principal {
	return authzentities.Principal{
		UserID:         m.ID,
		Email:          m.Email,
		FullName:       m.FullName,
		Role:           authzentities.Role(m.Role),
		OrganizationID: m.OrganizationID,
	}
}

type adminCredentialModel struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (adminCredentialModel) TableName() string {
	return "admin_credentials"
}

type adminAuditLogModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	OrgID       string    `gorm:"column:org_id"`
	ActorUserID string    `gorm:"column:actor_user_id"`
	Action      string    `gorm:"column:action"`
	TargetID    string    `gorm:"column:target_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (adminAuditLogModel) TableName() string {
	return "admin_audit_logs"
}

type outboxModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "admin_outbox"
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "admin_idempotency_records"
}

var (
	_ ports.Repository       = (*Repository)(nil)
	_ ports.IdempotencyStore = (*Repository)(nil)
	_ ports.OutboxRepository = (*Repository)(nil)
)
