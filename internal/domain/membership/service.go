package membership

import (
	"context"
	"errors"
	"time"

	"member-tracker-go/internal/domain/apperror"
	"member-tracker-go/internal/domain/semester"
	"member-tracker-go/internal/domain/validate"
	"member-tracker-go/pkg/logger"
)

type Service struct {
	repo      Repository
	orgs      OrganizationReader
	semesters SemesterReader
	notifier  Notifier
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, orgs OrganizationReader, semesters SemesterReader, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		orgs:      orgs,
		semesters: semesters,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// outcome carries what a locked recompute produced for post-commit work.
type outcome struct {
	membership Membership
	evaluation Evaluation
	activated  bool
}

func (s *Service) Join(ctx context.Context, input JoinInput) (*Membership, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if _, err := s.orgs.GetOrganization(ctx, input.OrganizationID); err != nil {
		return nil, err
	}
	if _, err := s.semesters.Get(ctx, input.SemesterID); err != nil {
		if errors.Is(err, semester.ErrSemesterNotFound) {
			return nil, ErrSemesterNotFound
		}
		return nil, err
	}

	var result outcome
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		_, err := tx.FindMembership(ctx, input.OrganizationID, input.MemberID, input.SemesterID)
		switch {
		case err == nil:
			return ErrAlreadyMember
		case !errors.Is(err, ErrMembershipNotFound):
			return err
		}

		role, err := s.carriedRole(ctx, tx, input.OrganizationID, input.MemberID, input.Role)
		if err != nil {
			return err
		}
		m := Membership{
			OrganizationID: input.OrganizationID,
			MemberID:       input.MemberID,
			SemesterID:     input.SemesterID,
			Role:           role,
		}
		if err := tx.CreateMembership(ctx, &m); err != nil {
			return err
		}
		result, err = s.recomputeLocked(ctx, tx, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterRecompute(ctx, result)
	return &result.membership, nil
}

// JoinCurrent enrolls a member in the semester current at call time.
func (s *Service) JoinCurrent(ctx context.Context, orgID, memberID uint, role Role) (*Membership, error) {
	current, err := s.semesters.Current(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return s.Join(ctx, JoinInput{
		OrganizationID: orgID,
		MemberID:       memberID,
		SemesterID:     current.ID,
		Role:           role,
	})
}

func (s *Service) Get(ctx context.Context, orgID, id uint) (*Membership, error) {
	return s.repo.GetMembership(ctx, orgID, id)
}

func (s *Service) List(ctx context.Context, orgID, semesterID uint) ([]Membership, error) {
	return s.repo.ListMemberships(ctx, orgID, semesterID)
}

func (s *Service) ListForMember(ctx context.Context, orgID, memberID uint) ([]Membership, error) {
	return s.repo.ListMemberMemberships(ctx, orgID, memberID)
}

func (s *Service) UpdateRole(ctx context.Context, orgID, id uint, role Role) (*Membership, error) {
	if role < RoleMember || role > RoleAdmin {
		return nil, apperror.Invalidf("role must be member, eboard or admin")
	}
	m, err := s.repo.GetMembership(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	m.Role = role
	return m, nil
}

// AdjustPoints applies a manual correction and re-evaluates status.
func (s *Service) AdjustPoints(ctx context.Context, orgID, id uint, delta int) (*Membership, Evaluation, error) {
	if _, err := s.repo.GetMembership(ctx, orgID, id); err != nil {
		return nil, Evaluation{}, err
	}

	var result outcome
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		result, err = s.recomputeWith(ctx, tx, id, func(m *Membership) {
			m.Points += delta
		})
		return err
	})
	if err != nil {
		return nil, Evaluation{}, err
	}

	s.afterRecompute(ctx, result)
	return &result.membership, result.evaluation, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id uint) error {
	if _, err := s.repo.GetMembership(ctx, orgID, id); err != nil {
		return err
	}
	return s.repo.DeleteMembership(ctx, id)
}

// RoleFor returns the member's role from their membership in the most
// recently started semester, so roles survive the turn of a semester until
// a newer membership replaces them. A member with none is ErrNotMember.
func (s *Service) RoleFor(ctx context.Context, orgID, memberID uint) (Role, error) {
	m, err := s.latestMembership(ctx, s.repo, orgID, memberID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return RoleMember, ErrNotMember
		}
		return RoleMember, err
	}
	return m.Role, nil
}

// latestMembership picks the membership whose semester started last, on or
// before now.
func (s *Service) latestMembership(ctx context.Context, repo Repository, orgID, memberID uint) (*Membership, error) {
	memberships, err := repo.ListMemberMemberships(ctx, orgID, memberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		latest      *Membership
		latestStart time.Time
	)
	for i := range memberships {
		sem, err := s.semesters.Get(ctx, memberships[i].SemesterID)
		if err != nil {
			if errors.Is(err, semester.ErrSemesterNotFound) {
				continue
			}
			return nil, err
		}
		if sem.StartDate.After(now) {
			continue
		}
		if latest == nil || sem.StartDate.After(latestStart) {
			latest = &memberships[i]
			latestStart = sem.StartDate
		}
	}
	if latest == nil {
		return nil, ErrMembershipNotFound
	}
	return latest, nil
}

// carriedRole is the role a new membership starts with: the member's latest
// role in the organization, never below floor.
func (s *Service) carriedRole(ctx context.Context, repo Repository, orgID, memberID uint, floor Role) (Role, error) {
	m, err := s.latestMembership(ctx, repo, orgID, memberID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return floor, nil
		}
		return floor, err
	}
	if m.Role.AtLeast(floor) {
		return m.Role, nil
	}
	return floor, nil
}

// Authorize fails with ErrInsufficientRole unless the member's latest role is
// at least min.
func (s *Service) Authorize(ctx context.Context, orgID, memberID uint, min Role) (Role, error) {
	role, err := s.RoleFor(ctx, orgID, memberID)
	if err != nil {
		return role, err
	}
	if !role.AtLeast(min) {
		return role, ErrInsufficientRole
	}
	return role, nil
}

// CreditAttendance awards the per-attendance points for eventType and
// re-evaluates, creating the membership when the member has none for the
// semester yet.
func (s *Service) CreditAttendance(ctx context.Context, input CreditInput) (*Membership, Evaluation, error) {
	requirements, err := s.orgs.ListRequirements(ctx, input.OrganizationID)
	if err != nil {
		return nil, Evaluation{}, err
	}
	credit := PointsPerAttendance(requirements, input.EventType)

	var result outcome
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		m, err := tx.FindMembership(ctx, input.OrganizationID, input.MemberID, input.SemesterID)
		if errors.Is(err, ErrMembershipNotFound) {
			m, err = s.ensureMembership(ctx, tx, input)
		}
		if err != nil {
			return err
		}

		result, err = s.recomputeWith(ctx, tx, m.ID, func(locked *Membership) {
			locked.Points += credit
		})
		return err
	})
	if err != nil {
		return nil, Evaluation{}, err
	}

	s.afterRecompute(ctx, result)
	return &result.membership, result.evaluation, nil
}

// ensureMembership inserts the membership unless a concurrent credit already
// did, then reads back whichever row won.
func (s *Service) ensureMembership(ctx context.Context, tx Repository, input CreditInput) (*Membership, error) {
	role, err := s.carriedRole(ctx, tx, input.OrganizationID, input.MemberID, RoleMember)
	if err != nil {
		return nil, err
	}
	if _, err := tx.EnsureMembership(ctx, &Membership{
		OrganizationID: input.OrganizationID,
		MemberID:       input.MemberID,
		SemesterID:     input.SemesterID,
		Role:           role,
	}); err != nil {
		return nil, err
	}
	return tx.FindMembership(ctx, input.OrganizationID, input.MemberID, input.SemesterID)
}

// Recompute re-evaluates a membership under a row lock and persists the
// result.
func (s *Service) Recompute(ctx context.Context, id uint) (*Membership, Evaluation, error) {
	var result outcome
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		result, err = s.recomputeLocked(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, Evaluation{}, err
	}

	s.afterRecompute(ctx, result)
	return &result.membership, result.evaluation, nil
}

// Status evaluates the stored membership without persisting anything.
func (s *Service) Status(ctx context.Context, orgID, id uint) (*Membership, Evaluation, error) {
	m, err := s.repo.GetMembership(ctx, orgID, id)
	if err != nil {
		return nil, Evaluation{}, err
	}
	input, err := s.evaluationInput(ctx, s.repo, *m)
	if err != nil {
		return nil, Evaluation{}, err
	}
	return m, Evaluate(input), nil
}

func (s *Service) recomputeLocked(ctx context.Context, tx Repository, id uint) (outcome, error) {
	return s.recomputeWith(ctx, tx, id, nil)
}

func (s *Service) recomputeWith(ctx context.Context, tx Repository, id uint, mutate func(*Membership)) (outcome, error) {
	m, err := tx.LockMembership(ctx, id)
	if err != nil {
		return outcome{}, err
	}
	wasActive := m.ActiveMember
	if mutate != nil {
		mutate(m)
	}

	input, err := s.evaluationInput(ctx, tx, *m)
	if err != nil {
		return outcome{}, err
	}
	evaluation := Evaluate(input)

	m.Points = evaluation.Points
	m.ActiveMember = evaluation.IsActive
	m.ReceivedBonus = evaluation.ReceivedBonus
	if err := tx.SaveEvaluation(ctx, m); err != nil {
		return outcome{}, err
	}

	result := outcome{membership: *m, evaluation: evaluation}
	if !wasActive && evaluation.IsActive {
		created, err := tx.CreateRecognition(ctx, &Recognition{
			OrganizationID: m.OrganizationID,
			MemberID:       m.MemberID,
			SemesterID:     m.SemesterID,
			Kind:           RecognitionActiveMembership,
			AwardedAt:      s.now().UTC(),
		})
		if err != nil {
			return outcome{}, err
		}
		result.activated = created
	}
	return result, nil
}

func (s *Service) evaluationInput(ctx context.Context, repo Repository, m Membership) (EvaluationInput, error) {
	org, err := s.orgs.GetOrganization(ctx, m.OrganizationID)
	if err != nil {
		return EvaluationInput{}, err
	}
	requirements, err := s.orgs.ListRequirements(ctx, m.OrganizationID)
	if err != nil {
		return EvaluationInput{}, err
	}
	stats, err := repo.AttendanceStats(ctx, m.OrganizationID, m.SemesterID, m.MemberID)
	if err != nil {
		return EvaluationInput{}, err
	}

	return EvaluationInput{
		MembershipType: org.MembershipType,
		Threshold:      org.ActiveThreshold,
		Points:         m.Points,
		ReceivedBonus:  m.ReceivedBonus,
		Requirements:   requirements,
		Stats:          stats,
	}, nil
}

// afterRecompute notifies once per recorded recognition. Notification
// failures never undo the state change.
func (s *Service) afterRecompute(ctx context.Context, result outcome) {
	if !result.activated || s.notifier == nil {
		return
	}

	org, err := s.orgs.GetOrganization(ctx, result.membership.OrganizationID)
	if err != nil {
		s.log.InternalError("memberships.notify: load organization failed", err,
			"organization_id", result.membership.OrganizationID, "membership_id", result.membership.ID)
		return
	}

	err = s.notifier.MembershipAchieved(ctx, Achievement{
		Membership:   result.membership,
		Organization: *org,
		Evaluation:   result.evaluation,
	})
	if err != nil {
		s.log.InternalError("memberships.notify: membership achieved notification failed", err,
			"organization_id", result.membership.OrganizationID, "membership_id", result.membership.ID)
	}
}
