package semester

import "context"

type Repository interface {
	// ListSemesters returns every semester ordered by start date ascending.
	ListSemesters(ctx context.Context) ([]Semester, error)
	GetSemester(ctx context.Context, id uint) (*Semester, error)
	CreateSemester(ctx context.Context, s *Semester) error
}
