package report

import (
	"context"
	"time"

	"member-tracker-go/internal/domain/member"
	"member-tracker-go/internal/domain/organization"
	"member-tracker-go/internal/domain/semester"
)

type Store interface {
	// ListMemberships returns the organization's memberships in the given
	// semesters joined with member name and email.
	ListMemberships(ctx context.Context, orgID uint, semesterIDs []uint) ([]MembershipRow, error)
	// ListEventAttendance returns events starting in [from, to) with their
	// attendance counts.
	ListEventAttendance(ctx context.Context, orgID uint, from, to time.Time) ([]EventAttendance, error)
	ListMemberAttendance(ctx context.Context, orgID, memberID uint) ([]AttendanceRow, error)
	ListMemberMemberships(ctx context.Context, orgID, memberID uint) ([]MembershipRow, error)
}

type OrganizationGetter interface {
	GetOrganization(ctx context.Context, id uint) (*organization.Organization, error)
}

type MemberGetter interface {
	GetMember(ctx context.Context, id uint) (*member.Member, error)
}

type SemesterLister interface {
	ListSemesters(ctx context.Context) ([]semester.Semester, error)
}
