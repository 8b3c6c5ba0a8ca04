package semester

import (
	"context"
	"errors"
	"testing"
	"time"

	"member-tracker-go/internal/domain/apperror"
)

type fakeSemesterRepo struct {
	semesters []Semester
}

func (r *fakeSemesterRepo) ListSemesters(ctx context.Context) ([]Semester, error) {
	return append([]Semester(nil), r.semesters...), nil
}

func (r *fakeSemesterRepo) GetSemester(ctx context.Context, id uint) (*Semester, error) {
	for _, s := range r.semesters {
		if s.ID == id {
			copied := s
			return &copied, nil
		}
	}
	return nil, ErrSemesterNotFound
}

func (r *fakeSemesterRepo) CreateSemester(ctx context.Context, s *Semester) error {
	s.ID = uint(len(r.semesters) + 1)
	r.semesters = append(r.semesters, *s)
	return nil
}

func TestServiceCurrentNoSemesters(t *testing.T) {
	svc := NewService(&fakeSemesterRepo{})

	_, err := svc.Current(context.Background(), time.Now())
	if !errors.Is(err, ErrNoSemesters) {
		t.Fatalf("expected ErrNoSemesters, got %v", err)
	}
	if apperror.KindOf(err) != apperror.NotFound {
		t.Fatalf("expected not found kind, got %s", apperror.KindOf(err))
	}
}

func TestServiceCreateValidatesDates(t *testing.T) {
	svc := NewService(&fakeSemesterRepo{})

	_, err := svc.Create(context.Background(), CreateInput{
		Name:         "Fall 2024",
		AcademicYear: "2024-2025",
		StartDate:    day(2024, 12, 1),
		EndDate:      day(2024, 8, 1),
	})
	if apperror.KindOf(err) != apperror.InvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestServiceCreateTruncatesToDay(t *testing.T) {
	repo := &fakeSemesterRepo{}
	svc := NewService(repo)

	sem, err := svc.Create(context.Background(), CreateInput{
		Name:         " Fall 2024 ",
		AcademicYear: "2024-2025",
		StartDate:    time.Date(2024, 8, 26, 15, 30, 0, 0, time.UTC),
		EndDate:      day(2024, 12, 13),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sem.Name != "Fall 2024" {
		t.Fatalf("expected trimmed name, got %q", sem.Name)
	}
	if !sem.StartDate.Equal(day(2024, 8, 26)) {
		t.Fatalf("expected midnight start, got %v", sem.StartDate)
	}
}

func TestServicePrevious(t *testing.T) {
	repo := &fakeSemesterRepo{semesters: fixtureSemesters()}
	svc := NewService(repo)

	_, err := svc.Previous(context.Background(), repo.semesters[0])
	if !errors.Is(err, ErrNoPreviousSemester) {
		t.Fatalf("expected ErrNoPreviousSemester, got %v", err)
	}
}
