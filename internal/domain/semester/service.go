package semester

import (
	"context"
	"strings"
	"time"

	"member-tracker-go/internal/domain/validate"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Semester, error) {
	return s.repo.ListSemesters(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*Semester, error) {
	return s.repo.GetSemester(ctx, id)
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Semester, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	sem := Semester{
		Name:         input.Name,
		AcademicYear: input.AcademicYear,
		StartDate:    truncateDay(input.StartDate),
		EndDate:      truncateDay(input.EndDate),
	}
	if err := s.repo.CreateSemester(ctx, &sem); err != nil {
		return nil, err
	}
	return &sem, nil
}

func (s *Service) Current(ctx context.Context, now time.Time) (*Semester, error) {
	semesters, err := s.repo.ListSemesters(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := Current(semesters, now)
	if !ok {
		return nil, ErrNoSemesters
	}
	return &current, nil
}

func (s *Service) Previous(ctx context.Context, target Semester) (*Semester, error) {
	semesters, err := s.repo.ListSemesters(ctx)
	if err != nil {
		return nil, err
	}
	prev, ok := Previous(semesters, target)
	if !ok {
		return nil, ErrNoPreviousSemester
	}
	return &prev, nil
}

func (s *Service) ForYear(ctx context.Context, year int) ([]Semester, error) {
	semesters, err := s.repo.ListSemesters(ctx)
	if err != nil {
		return nil, err
	}
	return ForYear(semesters, year), nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
