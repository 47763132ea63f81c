package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campus/contexts/identity-access/authorization-service/domain/entities"
	"campus/contexts/identity-access/authorization-service/ports"

	"gorm.io/gorm"
)

// Repository is the read-side postgres adapter for decision queries. It
// shares the organizations/admin_memberships tables written by the
// admin-management-service adapter.
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

func (r *Repository) FindOrganization(ctx context.Context, orgID string) (entities.Organization, bool, error) {
	var orgRow organizationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", orgID).
		First(&orgRow).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Organization{}, false, nil
		}
		return entities.Organization{}, false, r.logError("authz_repo_find_org_failed", err, "org_id", orgID)
	}

	var memberRows []adminMembershipModel
	err = r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("added_at ASC").
		Find(&memberRows).
		Error
	if err != nil {
		return entities.Organization{}, false, r.logError("authz_repo_list_admins_failed", err, "org_id", orgID)
	}

	org := orgRow.toEntity()
	org.Admins = make([]entities.AdminMembership, 0, len(memberRows))
	for _, row := range memberRows {
		org.Admins = append(org.Admins, row.toEntity())
	}
	return org, true, nil
}

func (r *Repository) FindPrincipal(ctx context.Context, userID string) (entities.Principal, bool, error) {
	var row principalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Principal{}, false, nil
		}
		return entities.Principal{}, false, r.logError("authz_repo_find_principal_failed", err, "user_id", userID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "identity-access/authorization-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("authorization repository operation failed", fields...)
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

func (m organizationModel) toEntity() entities.Organization {
	return entities.Organization{
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

func (m adminMembershipModel) toEntity() entities.AdminMembership {
	permissions := entities.NewPermissionSet()
	permissions[entities.CapabilityEnrollStudents] = m.CanEnrollStudents
	permissions[entities.CapabilityEnrollTeachers] = m.CanEnrollTeachers
	permissions[entities.CapabilityManageClasses] = m.CanManageClasses
	permissions[entities.CapabilityViewAnalytics] = m.CanViewAnalytics
	permissions[entities.CapabilityManageContent] = m.CanManageContent
	permissions[entities.CapabilityManageAdmins] = m.CanManageAdmins
	return entities.AdminMembership{
		UserID:      m.UserID,
		SubRole:     entities.SubRole(m.SubRole),
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

func (m principalModel) toEntity() entities.Principal {
	return entities.Principal{
		UserID:         m.ID,
		Email:          m.Email,
		FullName:       m.FullName,
		Role:           entities.Role(m.Role),
		OrganizationID: m.OrganizationID,
	}
}

var _ ports.OrganizationStore = (*Repository)(nil)
var _ ports.PrincipalStore = (*Repository)(nil)
