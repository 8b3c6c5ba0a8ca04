package attendance

import "member-tracker-go/internal/domain/apperror"

var (
	ErrEventNotInProgress = apperror.New(apperror.InvalidInput, "event is not in progress")
	ErrEmptyImport        = apperror.New(apperror.InvalidInput, "import contains no rows")
	ErrMalformedImport    = apperror.New(apperror.InvalidInput, "import is not valid csv")
)
