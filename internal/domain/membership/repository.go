package membership

import (
	"context"
	"time"

	"member-tracker-go/internal/domain/organization"
	"member-tracker-go/internal/domain/semester"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateMembership(ctx context.Context, m *Membership) error
	// EnsureMembership inserts m unless the (organization, member, semester)
	// row already exists and reports whether it inserted.
	EnsureMembership(ctx context.Context, m *Membership) (bool, error)
	GetMembership(ctx context.Context, orgID, id uint) (*Membership, error)
	// LockMembership loads the row with SELECT ... FOR UPDATE. Only valid
	// inside Transaction.
	LockMembership(ctx context.Context, id uint) (*Membership, error)
	FindMembership(ctx context.Context, orgID, memberID, semesterID uint) (*Membership, error)
	ListMemberships(ctx context.Context, orgID, semesterID uint) ([]Membership, error)
	// ListMemberMemberships returns the member's memberships ordered by
	// semester start date.
	ListMemberMemberships(ctx context.Context, orgID, memberID uint) ([]Membership, error)
	UpdateRole(ctx context.Context, id uint, role Role) error
	SaveEvaluation(ctx context.Context, m *Membership) error
	DeleteMembership(ctx context.Context, id uint) error
	AttendanceStats(ctx context.Context, orgID, semesterID, memberID uint) (map[string]TypeStats, error)
	// CreateRecognition reports false when the recognition already exists.
	CreateRecognition(ctx context.Context, r *Recognition) (bool, error)
}

type OrganizationReader interface {
	GetOrganization(ctx context.Context, id uint) (*organization.Organization, error)
	ListRequirements(ctx context.Context, orgID uint) ([]organization.MembershipRequirement, error)
}

type SemesterReader interface {
	Get(ctx context.Context, id uint) (*semester.Semester, error)
	Current(ctx context.Context, now time.Time) (*semester.Semester, error)
}

// Achievement describes a member that just became active.
type Achievement struct {
	Membership   Membership
	Organization organization.Organization
	Evaluation   Evaluation
}

type Notifier interface {
	MembershipAchieved(ctx context.Context, a Achievement) error
}
