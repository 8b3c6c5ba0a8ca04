package attendance

import (
	"context"

	"member-tracker-go/internal/domain/event"
	"member-tracker-go/internal/domain/member"
	"member-tracker-go/internal/domain/membership"
)

type Repository interface {
	// CreateAttendance inserts a unless the (member, event) pair exists, in
	// which case the stored row is loaded into a and false is returned.
	CreateAttendance(ctx context.Context, a *Attendance) (bool, error)
	DeleteAttendance(ctx context.Context, id uint) error
	ListForEvent(ctx context.Context, eventID uint) ([]Attendee, error)
}

type EventGetter interface {
	Get(ctx context.Context, orgID, eventID uint) (*event.Event, error)
}

type MemberResolver interface {
	Get(ctx context.Context, id uint) (*member.Member, error)
	CheckNewUser(ctx context.Context, input member.IdentityInput) (member.NewUserCheck, error)
}

type Creditor interface {
	CreditAttendance(ctx context.Context, input membership.CreditInput) (*membership.Membership, membership.Evaluation, error)
}
