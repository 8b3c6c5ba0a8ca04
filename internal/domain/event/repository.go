package event

import (
	"context"

	"member-tracker-go/internal/domain/semester"
)

type Repository interface {
	CreateEvent(ctx context.Context, e *Event) error
	GetEvent(ctx context.Context, orgID, eventID uint) (*Event, error)
	ListEvents(ctx context.Context, orgID uint, filter ListFilter) ([]Event, error)
	UpdateEvent(ctx context.Context, e *Event) error
	DeleteEvent(ctx context.Context, orgID, eventID uint) error
	CountByType(ctx context.Context, orgID, semesterID uint) (map[Type]int, error)
}

type SemesterGetter interface {
	GetSemester(ctx context.Context, id uint) (*semester.Semester, error)
}
