package organization

import (
	"context"
	"errors"
	"strings"

	"member-tracker-go/internal/domain/validate"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Organization, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	org := Organization{
		Name:            strings.TrimSpace(input.Name),
		Abbreviation:    strings.TrimSpace(input.Abbreviation),
		Description:     input.Description,
		Color:           input.Color,
		Email:           strings.TrimSpace(input.Email),
		Phone:           strings.TrimSpace(input.Phone),
		MembershipType:  input.MembershipType,
		ActiveThreshold: input.ActiveThreshold,
	}

	if err := s.repo.CreateOrganization(ctx, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Organization, error) {
	return s.repo.GetOrganization(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Organization, error) {
	return s.repo.ListOrganizations(ctx)
}

func (s *Service) Update(ctx context.Context, id uint, input UpdateInput) (*Organization, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		org.Name = strings.TrimSpace(*input.Name)
	}
	if input.Abbreviation != nil {
		org.Abbreviation = strings.TrimSpace(*input.Abbreviation)
	}
	if input.Description != nil {
		org.Description = *input.Description
	}
	if input.Color != nil {
		org.Color = *input.Color
	}
	if input.Email != nil {
		org.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		org.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.MembershipType != nil {
		org.MembershipType = *input.MembershipType
	}
	if input.ActiveThreshold != nil {
		org.ActiveThreshold = *input.ActiveThreshold
	}

	if err := s.repo.UpdateOrganization(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// Requirements returns the organization's requirements in evaluation order,
// bonuses included.
func (s *Service) Requirements(ctx context.Context, orgID uint) ([]MembershipRequirement, error) {
	if _, err := s.repo.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.repo.ListRequirements(ctx, orgID)
}

func (s *Service) AddRequirement(ctx context.Context, orgID uint, input RequirementInput) (*MembershipRequirement, error) {
	if err := checkRequirement(input); err != nil {
		return nil, err
	}

	var result MembershipRequirement
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetOrganization(ctx, orgID); err != nil {
			return err
		}
		existing, err := tx.ListRequirements(ctx, orgID)
		if err != nil {
			return err
		}

		req := MembershipRequirement{
			OrganizationID:  orgID,
			EventType:       input.EventType,
			RequirementType: input.RequirementType,
			Value:           input.Value,
			Position:        len(existing),
		}
		if err := tx.CreateRequirement(ctx, &req); err != nil {
			return err
		}
		bonuses := toBonusRules(req.ID, input.Bonuses)
		if err := tx.ReplaceBonuses(ctx, req.ID, bonuses); err != nil {
			return err
		}
		req.Bonuses = bonuses
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) UpdateRequirement(ctx context.Context, orgID, requirementID uint, input RequirementInput) (*MembershipRequirement, error) {
	if err := checkRequirement(input); err != nil {
		return nil, err
	}

	var result MembershipRequirement
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		req, err := tx.GetRequirement(ctx, orgID, requirementID)
		if err != nil {
			return err
		}
		req.EventType = input.EventType
		req.RequirementType = input.RequirementType
		req.Value = input.Value
		if err := tx.UpdateRequirement(ctx, req); err != nil {
			return err
		}
		bonuses := toBonusRules(req.ID, input.Bonuses)
		if err := tx.ReplaceBonuses(ctx, req.ID, bonuses); err != nil {
			return err
		}
		req.Bonuses = bonuses
		result = *req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) DeleteRequirement(ctx context.Context, orgID, requirementID uint) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetRequirement(ctx, orgID, requirementID); err != nil {
			return err
		}
		return tx.DeleteRequirement(ctx, orgID, requirementID)
	})
}

func (s *Service) EmailSettings(ctx context.Context, orgID uint) (*EmailSettings, error) {
	return s.repo.GetEmailSettings(ctx, orgID)
}

// CreateEmailSettings fails with ErrEmailSettingsExist when the organization
// already has a settings row.
func (s *Service) CreateEmailSettings(ctx context.Context, orgID uint, input EmailSettingsInput) (*EmailSettings, error) {
	var result EmailSettings
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetOrganization(ctx, orgID); err != nil {
			return err
		}
		_, err := tx.GetEmailSettings(ctx, orgID)
		switch {
		case err == nil:
			return ErrEmailSettingsExist
		case !errors.Is(err, ErrEmailSettingsNotFound):
			return err
		}

		result = applySettings(EmailSettings{OrganizationID: orgID}, input)
		return tx.CreateEmailSettings(ctx, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) UpdateEmailSettings(ctx context.Context, orgID uint, input EmailSettingsInput) (*EmailSettings, error) {
	settings, err := s.repo.GetEmailSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}
	updated := applySettings(*settings, input)
	if err := s.repo.UpdateEmailSettings(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func checkRequirement(input RequirementInput) error {
	if err := validate.Struct(input); err != nil {
		return err
	}
	switch input.RequirementType {
	case RequirementPercentage:
		if input.Value > 100 {
			return ErrPercentageOutOfRange
		}
	case RequirementPoints:
		if input.Value <= 0 {
			return ErrPointsValueInvalid
		}
	}
	return nil
}

func toBonusRules(requirementID uint, inputs []BonusInput) []BonusRule {
	bonuses := make([]BonusRule, 0, len(inputs))
	for _, b := range inputs {
		bonuses = append(bonuses, BonusRule{
			RequirementID:    requirementID,
			ThresholdPercent: b.ThresholdPercent,
			BonusPoints:      b.BonusPoints,
		})
	}
	return bonuses
}

func applySettings(settings EmailSettings, input EmailSettingsInput) EmailSettings {
	settings.StatusEmails = input.StatusEmails
	settings.AnnualReport = input.AnnualReport
	settings.SemesterReport = input.SemesterReport
	settings.MembershipAchieved = input.MembershipAchieved
	return settings
}
