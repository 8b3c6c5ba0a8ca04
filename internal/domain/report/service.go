package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"member-tracker-go/internal/domain/apperror"
	"member-tracker-go/internal/domain/membership"
	"member-tracker-go/internal/domain/organization"
	"member-tracker-go/internal/domain/semester"
	"member-tracker-go/pkg/logger"
)

const (
	minYear = 1900
	maxYear = 9999
)

// Service assembles member, semester and annual reports. Every error it
// returns is an *apperror.Error; store failures surface as UpstreamFailure.
type Service struct {
	store      Store
	aggregator *Aggregator
	orgs       OrganizationGetter
	members    MemberGetter
	semesters  SemesterLister
	log        logger.Logger
	now        func() time.Time
}

func NewService(store Store, orgs OrganizationGetter, members MemberGetter, semesters SemesterLister, log logger.Logger) *Service {
	return &Service{
		store:      store,
		aggregator: NewAggregator(store, log),
		orgs:       orgs,
		members:    members,
		semesters:  semesters,
		log:        log,
		now:        time.Now,
	}
}

func (s *Service) MemberReport(ctx context.Context, orgID, memberID uint) (result *MemberReport, err error) {
	const op = "reports.member"
	defer s.recoverPanic(op, &err)

	org, err := s.orgs.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID)
	}
	m, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID, "member_id", memberID)
	}

	rows, err := s.store.ListMemberAttendance(ctx, orgID, memberID)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID, "member_id", memberID)
	}
	memberships, err := s.store.ListMemberMemberships(ctx, orgID, memberID)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID, "member_id", memberID)
	}
	if rows == nil {
		rows = []AttendanceRow{}
	}

	data := MemberData{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Major:       m.Major,
		Status:      string(m.Status),
		Memberships: make([]MembershipBrief, 0, len(memberships)),
	}
	for _, ms := range memberships {
		data.Memberships = append(data.Memberships, MembershipBrief{
			SemesterID: ms.SemesterID,
			Role:       ms.Role.String(),
			Points:     ms.Points,
			Active:     ms.Active,
		})
		data.TotalPoints += ms.Points
	}
	data.SemestersSeen = len(memberships)

	return &MemberReport{
		Organization:   summarize(org),
		MemberData:     data,
		AttendanceData: rows,
	}, nil
}

// SemesterReport reports on semesterID, or on the current semester when it
// is nil.
func (s *Service) SemesterReport(ctx context.Context, orgID uint, semesterID *uint) (result Report, err error) {
	const op = "reports.semester"
	defer s.recoverPanic(op, &err)

	org, err := s.orgs.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID)
	}
	all, err := s.semesters.ListSemesters(ctx)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID)
	}

	target, err := s.targetSemester(all, semesterID)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID, "semester_id", requested(semesterID))
	}

	this := semesterWindow(target)
	period := PeriodInfo{
		Kind:         PeriodSemester,
		Year:         target.StartDate.Year(),
		SemesterID:   target.ID,
		SemesterName: target.Name,
		From:         this.From,
		To:           this.To,
	}

	prev, hasPrev := semester.Previous(all, target)
	if !hasPrev || !org.CreatedAt.Before(target.StartDate) {
		stats, err := s.aggregator.Aggregate(ctx, orgID, this, nil, nil)
		if err != nil {
			return nil, s.fail(op, err, "organization_id", orgID, "semester_id", target.ID)
		}
		return NewOrgReport{Body: body(org, period, stats, membersBySemester(stats.Memberships))}, nil
	}

	prior := semesterWindow(prev)
	var priorPrior *Window
	if older, ok := semester.Previous(all, prev); ok {
		w := semesterWindow(older)
		priorPrior = &w
	}

	stats, err := s.aggregator.Aggregate(ctx, orgID, this, &prior, priorPrior)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID, "semester_id", target.ID)
	}
	return established(org, period, stats, membersBySemester(stats.Memberships)), nil
}

// AnnualReport reports on calendar year, or on the current year when it is
// nil.
func (s *Service) AnnualReport(ctx context.Context, orgID uint, year *int) (result Report, err error) {
	const op = "reports.annual"
	defer s.recoverPanic(op, &err)

	y := s.now().Year()
	if year != nil {
		y = *year
	}
	if y < minYear || y > maxYear {
		return nil, s.fail(op, ErrYearOutOfRange, "organization_id", orgID, "year", y)
	}

	org, err := s.orgs.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID, "year", y)
	}
	all, err := s.semesters.ListSemesters(ctx)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID, "year", y)
	}

	this := yearWindow(all, y)
	period := PeriodInfo{Kind: PeriodAnnual, Year: y, From: this.From, To: this.To}

	if org.CreatedAt.Year() >= y {
		stats, err := s.aggregator.Aggregate(ctx, orgID, this, nil, nil)
		if err != nil {
			return nil, s.fail(op, err, "organization_id", orgID, "year", y)
		}
		return NewOrgReport{Body: body(org, period, stats, membersByYear(stats.Memberships))}, nil
	}

	prior := yearWindow(all, y-1)
	var priorPrior *Window
	if older := yearWindow(all, y-2); len(older.SemesterIDs) > 0 {
		priorPrior = &older
	}

	stats, err := s.aggregator.Aggregate(ctx, orgID, this, &prior, priorPrior)
	if err != nil {
		return nil, s.fail(op, err, "organization_id", orgID, "year", y)
	}
	return established(org, period, stats, membersByYear(stats.Memberships)), nil
}

func (s *Service) targetSemester(all []semester.Semester, semesterID *uint) (semester.Semester, error) {
	if semesterID != nil {
		for _, sem := range all {
			if sem.ID == *semesterID {
				return sem, nil
			}
		}
		return semester.Semester{}, semester.ErrSemesterNotFound
	}

	current, ok := semester.Current(all, s.now())
	if !ok {
		return semester.Semester{}, semester.ErrNoSemesters
	}
	return current, nil
}

// fail logs err with context and returns it classified. Unclassified errors
// become UpstreamFailure.
func (s *Service) fail(op string, err error, args ...any) error {
	kind := apperror.KindOf(err)
	if kind == apperror.UpstreamFailure {
		s.log.InternalError(op+": store failure", err, args...)
		return apperror.E(op, apperror.UpstreamFailure, err)
	}
	s.log.BusinessError(op+": "+kind.String(), err, args...)
	return apperror.Wrap(op, err)
}

func (s *Service) recoverPanic(op string, err *error) {
	if r := recover(); r != nil {
		panicErr := fmt.Errorf("panic: %v", r)
		s.log.Critical(op+": recovered panic", "err", panicErr)
		*err = apperror.E(op, apperror.UpstreamFailure, panicErr)
	}
}

func semesterWindow(s semester.Semester) Window {
	return Window{
		SemesterIDs: []uint{s.ID},
		From:        s.StartDate,
		To:          s.EndDate.AddDate(0, 0, 1),
	}
}

func yearWindow(all []semester.Semester, y int) Window {
	return Window{
		SemesterIDs: semester.IDs(semester.ForYear(all, y)),
		From:        time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(y+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func summarize(org *organization.Organization) OrganizationSummary {
	return OrganizationSummary{
		ID:              org.ID,
		Name:            org.Name,
		Abbreviation:    org.Abbreviation,
		Email:           org.Email,
		MembershipType:  string(org.MembershipType),
		ActiveThreshold: org.ActiveThreshold,
		CreatedAt:       org.CreatedAt,
	}
}

func body(org *organization.Organization, period PeriodInfo, stats PeriodStats, members []MemberRow) Body {
	return Body{
		Organization:     summarize(org),
		Period:           period,
		MemberDataThis:   stats.MembersThis,
		MeetingsDataThis: stats.MeetingsThis,
		Members:          members,
		EventTypeCounts:  eventTypeCounts(stats.MeetingsThis.Events),
	}
}

func established(org *organization.Organization, period PeriodInfo, stats PeriodStats, members []MemberRow) EstablishedOrgReport {
	report := EstablishedOrgReport{Body: body(org, period, stats, members)}
	if stats.MembersLast != nil {
		report.MemberDataLast = *stats.MembersLast
	}
	if stats.MeetingsLast != nil {
		report.MeetingsDataLast = *stats.MeetingsLast
	} else {
		report.MeetingsDataLast = MeetingsData{Events: []EventAttendance{}}
	}
	return report
}

func membersBySemester(rows []MembershipRow) []MemberRow {
	result := make([]MemberRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, MemberRow{
			MemberID: row.MemberID,
			Name:     row.Name,
			Email:    row.Email,
			Role:     row.Role.String(),
			Points:   row.Points,
			Active:   row.Active,
		})
	}
	sortMembers(result)
	return result
}

// membersByYear folds a member's semesters into one row: points summed,
// active if active in any semester, highest role held.
func membersByYear(rows []MembershipRow) []MemberRow {
	type folded struct {
		row  MemberRow
		role membership.Role
	}
	byMember := make(map[uint]*folded, len(rows))
	for _, row := range rows {
		f, ok := byMember[row.MemberID]
		if !ok {
			f = &folded{row: MemberRow{MemberID: row.MemberID, Name: row.Name, Email: row.Email}, role: row.Role}
			byMember[row.MemberID] = f
		}
		f.row.Points += row.Points
		f.row.Active = f.row.Active || row.Active
		if row.Role > f.role {
			f.role = row.Role
		}
	}

	result := make([]MemberRow, 0, len(byMember))
	for _, f := range byMember {
		f.row.Role = f.role.String()
		result = append(result, f.row)
	}
	sortMembers(result)
	return result
}

func sortMembers(rows []MemberRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := strings.ToLower(rows[i].Name), strings.ToLower(rows[j].Name)
		if a != b {
			return a < b
		}
		return rows[i].MemberID < rows[j].MemberID
	})
}

func requested(id *uint) any {
	if id == nil {
		return "current"
	}
	return *id
}
