package event

import "member-tracker-go/internal/domain/apperror"

var (
	ErrEventNotFound    = apperror.New(apperror.NotFound, "event not found")
	ErrSemesterNotFound = apperror.New(apperror.InvalidInput, "semester does not exist")
)
