package organization

import (
	"context"
	"errors"
	"testing"

	"member-tracker-go/internal/domain/apperror"
)

type fakeOrgRepo struct {
	nextID       uint
	orgs         map[uint]*Organization
	requirements map[uint]*MembershipRequirement
	settings     map[uint]*EmailSettings
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{
		orgs:         make(map[uint]*Organization),
		requirements: make(map[uint]*MembershipRequirement),
		settings:     make(map[uint]*EmailSettings),
	}
}

func (r *fakeOrgRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeOrgRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeOrgRepo) CreateOrganization(ctx context.Context, org *Organization) error {
	org.ID = r.id()
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *fakeOrgRepo) GetOrganization(ctx context.Context, id uint) (*Organization, error) {
	org, ok := r.orgs[id]
	if !ok {
		return nil, ErrOrganizationNotFound
	}
	copied := *org
	return &copied, nil
}

func (r *fakeOrgRepo) ListOrganizations(ctx context.Context) ([]Organization, error) {
	result := make([]Organization, 0, len(r.orgs))
	for _, org := range r.orgs {
		result = append(result, *org)
	}
	return result, nil
}

func (r *fakeOrgRepo) UpdateOrganization(ctx context.Context, org *Organization) error {
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *fakeOrgRepo) ListRequirements(ctx context.Context, orgID uint) ([]MembershipRequirement, error) {
	result := make([]MembershipRequirement, 0)
	for _, req := range r.requirements {
		if req.OrganizationID == orgID {
			result = append(result, *req)
		}
	}
	return result, nil
}

func (r *fakeOrgRepo) GetRequirement(ctx context.Context, orgID, requirementID uint) (*MembershipRequirement, error) {
	req, ok := r.requirements[requirementID]
	if !ok || req.OrganizationID != orgID {
		return nil, ErrRequirementNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeOrgRepo) CreateRequirement(ctx context.Context, req *MembershipRequirement) error {
	req.ID = r.id()
	copied := *req
	r.requirements[req.ID] = &copied
	return nil
}

func (r *fakeOrgRepo) ReplaceBonuses(ctx context.Context, requirementID uint, bonuses []BonusRule) error {
	for i := range bonuses {
		bonuses[i].ID = r.id()
	}
	r.requirements[requirementID].Bonuses = bonuses
	return nil
}

func (r *fakeOrgRepo) UpdateRequirement(ctx context.Context, req *MembershipRequirement) error {
	copied := *req
	r.requirements[req.ID] = &copied
	return nil
}

func (r *fakeOrgRepo) DeleteRequirement(ctx context.Context, orgID, requirementID uint) error {
	delete(r.requirements, requirementID)
	return nil
}

func (r *fakeOrgRepo) GetEmailSettings(ctx context.Context, orgID uint) (*EmailSettings, error) {
	settings, ok := r.settings[orgID]
	if !ok {
		return nil, ErrEmailSettingsNotFound
	}
	copied := *settings
	return &copied, nil
}

func (r *fakeOrgRepo) CreateEmailSettings(ctx context.Context, settings *EmailSettings) error {
	settings.ID = r.id()
	copied := *settings
	r.settings[settings.OrganizationID] = &copied
	return nil
}

func (r *fakeOrgRepo) UpdateEmailSettings(ctx context.Context, settings *EmailSettings) error {
	copied := *settings
	r.settings[settings.OrganizationID] = &copied
	return nil
}

func createOrg(t *testing.T, svc *Service) *Organization {
	t.Helper()
	org, err := svc.Create(context.Background(), CreateInput{
		Name:            "Computer Science House",
		Abbreviation:    "CSH",
		MembershipType:  MembershipPoints,
		ActiveThreshold: 48,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return org
}

func TestCreateValidatesInput(t *testing.T) {
	svc := NewService(newFakeOrgRepo())

	_, err := svc.Create(context.Background(), CreateInput{Name: " ", MembershipType: "karma"})
	if apperror.KindOf(err) != apperror.InvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUpdateOnlyTouchesProvidedFields(t *testing.T) {
	svc := NewService(newFakeOrgRepo())
	org := createOrg(t, svc)

	threshold := 60
	updated, err := svc.Update(context.Background(), org.ID, UpdateInput{ActiveThreshold: &threshold})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.ActiveThreshold != 60 {
		t.Fatalf("expected threshold 60, got %d", updated.ActiveThreshold)
	}
	if updated.Name != "Computer Science House" {
		t.Fatalf("expected name unchanged, got %q", updated.Name)
	}
}

func TestAddRequirementRejectsPercentAbove100(t *testing.T) {
	svc := NewService(newFakeOrgRepo())
	org := createOrg(t, svc)

	_, err := svc.AddRequirement(context.Background(), org.ID, RequirementInput{
		EventType:       "general_meeting",
		RequirementType: RequirementPercentage,
		Value:           120,
	})
	if !errors.Is(err, ErrPercentageOutOfRange) {
		t.Fatalf("expected ErrPercentageOutOfRange, got %v", err)
	}
}

func TestAddRequirementStoresBonusesInOrder(t *testing.T) {
	svc := NewService(newFakeOrgRepo())
	org := createOrg(t, svc)
	ctx := context.Background()

	first, err := svc.AddRequirement(ctx, org.ID, RequirementInput{
		EventType:       "general_meeting",
		RequirementType: RequirementPoints,
		Value:           2,
		Bonuses:         []BonusInput{{ThresholdPercent: 75, BonusPoints: 5}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.AddRequirement(ctx, org.ID, RequirementInput{
		EventType:       "volunteer",
		RequirementType: RequirementPoints,
		Value:           3,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first.Position != 0 || second.Position != 1 {
		t.Fatalf("expected positions 0 and 1, got %d and %d", first.Position, second.Position)
	}
	if len(first.Bonuses) != 1 || first.Bonuses[0].RequirementID != first.ID {
		t.Fatalf("expected bonus attached to requirement, got %+v", first.Bonuses)
	}
}

func TestRequirementsUnknownOrganization(t *testing.T) {
	svc := NewService(newFakeOrgRepo())

	_, err := svc.Requirements(context.Background(), 99)
	if !errors.Is(err, ErrOrganizationNotFound) {
		t.Fatalf("expected ErrOrganizationNotFound, got %v", err)
	}
}

func TestCreateEmailSettingsConflict(t *testing.T) {
	svc := NewService(newFakeOrgRepo())
	org := createOrg(t, svc)
	ctx := context.Background()

	if _, err := svc.CreateEmailSettings(ctx, org.ID, EmailSettingsInput{SemesterReport: true}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, err := svc.CreateEmailSettings(ctx, org.ID, EmailSettingsInput{})
	if !errors.Is(err, ErrEmailSettingsExist) {
		t.Fatalf("expected ErrEmailSettingsExist, got %v", err)
	}
	if apperror.KindOf(err) != apperror.Conflict {
		t.Fatalf("expected conflict kind, got %s", apperror.KindOf(err))
	}

	settings, err := svc.EmailSettings(ctx, org.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !settings.SemesterReport || settings.AnnualReport {
		t.Fatalf("expected first settings to be kept, got %+v", settings)
	}
}
