package member

import "member-tracker-go/internal/domain/apperror"

var (
	ErrMemberNotFound = apperror.New(apperror.NotFound, "member not found")
	ErrEmailTaken     = apperror.New(apperror.Conflict, "email already registered")
)
