package organization

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, id uint) (*Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	UpdateOrganization(ctx context.Context, org *Organization) error
	ListRequirements(ctx context.Context, orgID uint) ([]MembershipRequirement, error)
	GetRequirement(ctx context.Context, orgID, requirementID uint) (*MembershipRequirement, error)
	CreateRequirement(ctx context.Context, req *MembershipRequirement) error
	ReplaceBonuses(ctx context.Context, requirementID uint, bonuses []BonusRule) error
	UpdateRequirement(ctx context.Context, req *MembershipRequirement) error
	DeleteRequirement(ctx context.Context, orgID, requirementID uint) error
	GetEmailSettings(ctx context.Context, orgID uint) (*EmailSettings, error)
	CreateEmailSettings(ctx context.Context, settings *EmailSettings) error
	UpdateEmailSettings(ctx context.Context, settings *EmailSettings) error
}
