package member

import (
	"context"
	"strings"

	"member-tracker-go/internal/domain/validate"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Get(ctx context.Context, id uint) (*Member, error) {
	return s.repo.GetMember(ctx, id)
}

func (s *Service) ListByIDs(ctx context.Context, ids []uint) ([]Member, error) {
	if len(ids) == 0 {
		return []Member{}, nil
	}
	return s.repo.ListMembersByIDs(ctx, ids)
}

// GetMemberByUsername looks a member up by institutional email. A missing
// member is not an error: it returns nil, nil.
func (s *Service) GetMemberByUsername(ctx context.Context, username string) (*Member, error) {
	username = normalizeEmail(username)
	if username == "" {
		return nil, nil
	}
	return s.repo.GetMemberByEmail(ctx, username)
}

// CheckNewUser resolves a login identity. Unknown identities get a member
// created from name and email alone.
func (s *Service) CheckNewUser(ctx context.Context, input IdentityInput) (NewUserCheck, error) {
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		return NewUserCheck{}, err
	}

	existing, err := s.repo.GetMemberByEmail(ctx, input.Email)
	if err != nil {
		return NewUserCheck{}, err
	}
	if existing != nil {
		return NewUserCheck{IsNewUser: false, Member: existing}, nil
	}

	created := Member{Name: input.Name, Email: input.Email}
	if err := s.repo.CreateMember(ctx, &created); err != nil {
		return NewUserCheck{}, err
	}
	return NewUserCheck{IsNewUser: true, Member: &created}, nil
}

func (s *Service) Update(ctx context.Context, id uint, input UpdateInput) (*Member, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	m, err := s.repo.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		m.Name = strings.TrimSpace(*input.Name)
	}
	if input.PersonalEmail != nil {
		m.PersonalEmail = normalizeEmail(*input.PersonalEmail)
	}
	if input.Phone != nil {
		m.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.GraduationDate != nil {
		graduation := input.GraduationDate.UTC()
		m.GraduationDate = &graduation
	}
	if input.TshirtSize != nil {
		m.TshirtSize = *input.TshirtSize
	}
	if input.Major != nil {
		m.Major = strings.TrimSpace(*input.Major)
	}
	if input.Gender != nil {
		m.Gender = strings.TrimSpace(*input.Gender)
	}
	if input.Race != nil {
		m.Race = strings.TrimSpace(*input.Race)
	}
	if input.Status != nil {
		m.Status = *input.Status
	}

	if err := s.repo.UpdateMember(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
