package notification

import (
	"context"
	"fmt"

	"member-tracker-go/internal/domain/member"
	"member-tracker-go/internal/domain/membership"
	"member-tracker-go/internal/domain/report"
	"member-tracker-go/internal/domain/semester"
)

type MemberGetter interface {
	Get(ctx context.Context, id uint) (*member.Member, error)
}

type SemesterGetter interface {
	Get(ctx context.Context, id uint) (*semester.Semester, error)
}

// AchievementNotifier emails a member the moment they become active.
type AchievementNotifier struct {
	members    MemberGetter
	semesters  SemesterGetter
	renderer   *Renderer
	dispatcher *Dispatcher
}

var _ membership.Notifier = (*AchievementNotifier)(nil)

func NewAchievementNotifier(members MemberGetter, semesters SemesterGetter, renderer *Renderer, dispatcher *Dispatcher) *AchievementNotifier {
	return &AchievementNotifier{
		members:    members,
		semesters:  semesters,
		renderer:   renderer,
		dispatcher: dispatcher,
	}
}

func (n *AchievementNotifier) MembershipAchieved(ctx context.Context, a membership.Achievement) error {
	m, err := n.members.Get(ctx, a.Membership.MemberID)
	if err != nil {
		return fmt.Errorf("load member: %w", err)
	}
	sem, err := n.semesters.Get(ctx, a.Membership.SemesterID)
	if err != nil {
		return fmt.Errorf("load semester: %w", err)
	}

	msg, err := n.renderer.MembershipAchieved(a.Organization, *m, *sem, a.Evaluation)
	if err != nil {
		return err
	}

	n.dispatcher.Dispatch(ctx, DispatchKey{
		OrganizationID: a.Organization.ID,
		PeriodKey:      report.SemesterPeriodKey(sem.ID),
		Kind:           KindMembershipAchieved,
		Recipient:      msg.RecipientEmail,
	}, msg)
	return nil
}
