package event

import (
	"context"
	"errors"
	"strings"

	"member-tracker-go/internal/domain/semester"
	"member-tracker-go/internal/domain/validate"
)

type Service struct {
	repo      Repository
	semesters SemesterGetter
}

func NewService(repo Repository, semesters SemesterGetter) *Service {
	return &Service{repo: repo, semesters: semesters}
}

func (s *Service) Create(ctx context.Context, orgID uint, input CreateInput) (*Event, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if err := s.checkSemester(ctx, input.SemesterID); err != nil {
		return nil, err
	}

	e := Event{OrganizationID: orgID}
	apply(&e, input)
	if err := s.repo.CreateEvent(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) Get(ctx context.Context, orgID, eventID uint) (*Event, error) {
	return s.repo.GetEvent(ctx, orgID, eventID)
}

func (s *Service) List(ctx context.Context, orgID uint, filter ListFilter) ([]Event, error) {
	return s.repo.ListEvents(ctx, orgID, filter)
}

func (s *Service) Update(ctx context.Context, orgID, eventID uint, input CreateInput) (*Event, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	e, err := s.repo.GetEvent(ctx, orgID, eventID)
	if err != nil {
		return nil, err
	}
	if input.SemesterID != e.SemesterID {
		if err := s.checkSemester(ctx, input.SemesterID); err != nil {
			return nil, err
		}
	}

	apply(e, input)
	if err := s.repo.UpdateEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, orgID, eventID uint) error {
	if _, err := s.repo.GetEvent(ctx, orgID, eventID); err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, orgID, eventID)
}

// CountByType returns how many events of each type the organization held in
// the semester. Types without events are absent.
func (s *Service) CountByType(ctx context.Context, orgID, semesterID uint) (map[Type]int, error) {
	return s.repo.CountByType(ctx, orgID, semesterID)
}

func (s *Service) checkSemester(ctx context.Context, semesterID uint) error {
	if _, err := s.semesters.GetSemester(ctx, semesterID); err != nil {
		if errors.Is(err, semester.ErrSemesterNotFound) {
			return ErrSemesterNotFound
		}
		return err
	}
	return nil
}

func apply(e *Event, input CreateInput) {
	e.SemesterID = input.SemesterID
	e.Name = input.Name
	e.StartAt = input.StartAt.UTC()
	e.EndAt = input.EndAt.UTC()
	e.Location = strings.TrimSpace(input.Location)
	e.Description = input.Description
	e.EventType = input.EventType
}
