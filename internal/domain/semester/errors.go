package semester

import "member-tracker-go/internal/domain/apperror"

var (
	ErrSemesterNotFound   = apperror.New(apperror.NotFound, "semester not found")
	ErrNoSemesters        = apperror.New(apperror.NotFound, "no semesters configured")
	ErrNoPreviousSemester = apperror.New(apperror.NotFound, "no previous semester")
)
