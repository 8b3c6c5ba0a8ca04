package organization

import (
	"context"
	"errors"

	"gorm.io/gorm"

	orgdomain "member-tracker-go/internal/domain/organization"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(orgdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateOrganization(ctx context.Context, org *orgdomain.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *PostgresRepository) GetOrganization(ctx context.Context, id uint) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orgdomain.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *PostgresRepository) ListOrganizations(ctx context.Context) ([]orgdomain.Organization, error) {
	var orgs []orgdomain.Organization
	if err := r.db.WithContext(ctx).Order("name asc").Order("id asc").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *PostgresRepository) UpdateOrganization(ctx context.Context, org *orgdomain.Organization) error {
	result := r.db.WithContext(ctx).Model(org).Select(
		"name", "abbreviation", "description", "color", "email", "phone", "membership_type", "active_threshold", "updated_at",
	).Updates(org)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return orgdomain.ErrOrganizationNotFound
	}
	return nil
}

func (r *PostgresRepository) ListRequirements(ctx context.Context, orgID uint) ([]orgdomain.MembershipRequirement, error) {
	var reqs []orgdomain.MembershipRequirement
	if err := r.db.WithContext(ctx).
		Preload("Bonuses", func(db *gorm.DB) *gorm.DB {
			return db.Order("threshold_percent asc").Order("id asc")
		}).
		Where("organization_id = ?", orgID).
		Order("position asc").
		Order("id asc").
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *PostgresRepository) GetRequirement(ctx context.Context, orgID, requirementID uint) (*orgdomain.MembershipRequirement, error) {
	var req orgdomain.MembershipRequirement
	err := r.db.WithContext(ctx).
		Preload("Bonuses", func(db *gorm.DB) *gorm.DB {
			return db.Order("threshold_percent asc").Order("id asc")
		}).
		Where("organization_id = ? AND id = ?", orgID, requirementID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orgdomain.ErrRequirementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PostgresRepository) CreateRequirement(ctx context.Context, req *orgdomain.MembershipRequirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// ReplaceBonuses swaps the requirement's bonus rules for bonuses, assigning
// fresh ids to the new rows.
func (r *PostgresRepository) ReplaceBonuses(ctx context.Context, requirementID uint, bonuses []orgdomain.BonusRule) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("requirement_id = ?", requirementID).Delete(&orgdomain.BonusRule{}).Error; err != nil {
		return err
	}
	if len(bonuses) == 0 {
		return nil
	}
	for i := range bonuses {
		bonuses[i].ID = 0
		bonuses[i].RequirementID = requirementID
	}
	return db.Create(&bonuses).Error
}

func (r *PostgresRepository) UpdateRequirement(ctx context.Context, req *orgdomain.MembershipRequirement) error {
	result := r.db.WithContext(ctx).Model(req).
		Omit("Bonuses").
		Select("event_type", "requirement_type", "value", "position").
		Updates(req)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return orgdomain.ErrRequirementNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteRequirement(ctx context.Context, orgID, requirementID uint) error {
	result := r.db.WithContext(ctx).Delete(&orgdomain.MembershipRequirement{}, "organization_id = ? AND id = ?", orgID, requirementID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return orgdomain.ErrRequirementNotFound
	}
	return nil
}

func (r *PostgresRepository) GetEmailSettings(ctx context.Context, orgID uint) (*orgdomain.EmailSettings, error) {
	var settings orgdomain.EmailSettings
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orgdomain.ErrEmailSettingsNotFound
		}
		return nil, err
	}
	return &settings, nil
}

func (r *PostgresRepository) CreateEmailSettings(ctx context.Context, settings *orgdomain.EmailSettings) error {
	err := r.db.WithContext(ctx).Create(settings).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return orgdomain.ErrEmailSettingsExist
	}
	return err
}

func (r *PostgresRepository) UpdateEmailSettings(ctx context.Context, settings *orgdomain.EmailSettings) error {
	result := r.db.WithContext(ctx).Model(&orgdomain.EmailSettings{}).
		Where("organization_id = ?", settings.OrganizationID).
		Updates(map[string]any{
			"status_emails":       settings.StatusEmails,
			"annual_report":       settings.AnnualReport,
			"semester_report":     settings.SemesterReport,
			"membership_achieved": settings.MembershipAchieved,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return orgdomain.ErrEmailSettingsNotFound
	}
	return nil
}
