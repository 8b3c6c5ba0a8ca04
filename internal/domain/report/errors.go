package report

import "member-tracker-go/internal/domain/apperror"

var (
	ErrYearOutOfRange = apperror.New(apperror.InvalidInput, "year must be between 1900 and 9999")
)
