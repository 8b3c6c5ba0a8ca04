package membership

import "member-tracker-go/internal/domain/apperror"

var (
	ErrMembershipNotFound = apperror.New(apperror.NotFound, "membership not found")
	ErrAlreadyMember      = apperror.New(apperror.Conflict, "member already belongs to the organization this semester")
	ErrNotMember          = apperror.New(apperror.Unauthorized, "not a member of this organization")
	ErrInsufficientRole   = apperror.New(apperror.Unauthorized, "insufficient role")
	ErrSemesterNotFound   = apperror.New(apperror.InvalidInput, "semester does not exist")
)
