package organization

import "member-tracker-go/internal/domain/apperror"

var (
	ErrOrganizationNotFound  = apperror.New(apperror.NotFound, "organization not found")
	ErrRequirementNotFound   = apperror.New(apperror.NotFound, "requirement not found")
	ErrEmailSettingsNotFound = apperror.New(apperror.NotFound, "email settings not found")
	ErrEmailSettingsExist    = apperror.New(apperror.Conflict, "email settings already exist")
	ErrPercentageOutOfRange  = apperror.New(apperror.InvalidInput, "percentage requirement must be between 0 and 100")
	ErrPointsValueInvalid    = apperror.New(apperror.InvalidInput, "points requirement value must be positive")
)
