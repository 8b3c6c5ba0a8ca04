package report

import (
	"context"
	"fmt"

	"member-tracker-go/internal/domain/event"
	"member-tracker-go/pkg/logger"
)

type Aggregator struct {
	store Store
	log   logger.Logger
}

func NewAggregator(store Store, log logger.Logger) *Aggregator {
	return &Aggregator{store: store, log: log}
}

// Aggregate computes counts for this window and, when prior is set, for the
// prior window. priorPrior only feeds the prior block's new-member counts; a
// nil or failing priorPrior zeroes them instead of failing the call.
func (a *Aggregator) Aggregate(ctx context.Context, orgID uint, this Window, prior, priorPrior *Window) (PeriodStats, error) {
	thisRows, err := a.memberships(ctx, orgID, this)
	if err != nil {
		return PeriodStats{}, fmt.Errorf("this period memberships: %w", err)
	}
	thisEvents, err := a.store.ListEventAttendance(ctx, orgID, this.From, this.To)
	if err != nil {
		return PeriodStats{}, fmt.Errorf("this period events: %w", err)
	}

	stats := PeriodStats{
		MeetingsThis: meetingsData(thisEvents),
		Memberships:  thisRows,
	}

	if prior == nil {
		stats.MembersThis = memberCounts(thisRows, nil)
		return stats, nil
	}

	priorRows, err := a.memberships(ctx, orgID, *prior)
	if err != nil {
		return PeriodStats{}, fmt.Errorf("prior period memberships: %w", err)
	}
	priorEvents, err := a.store.ListEventAttendance(ctx, orgID, prior.From, prior.To)
	if err != nil {
		return PeriodStats{}, fmt.Errorf("prior period events: %w", err)
	}
	stats.MembersThis = memberCounts(thisRows, priorRows)

	last := a.priorCounts(ctx, orgID, priorRows, priorPrior)
	lastMeetings := meetingsData(priorEvents)
	stats.MembersLast = &last
	stats.MeetingsLast = &lastMeetings
	return stats, nil
}

func (a *Aggregator) priorCounts(ctx context.Context, orgID uint, priorRows []MembershipRow, priorPrior *Window) MemberCounts {
	if priorPrior == nil || len(priorPrior.SemesterIDs) == 0 {
		return withoutNew(memberCounts(priorRows, nil))
	}

	olderRows, err := a.store.ListMemberships(ctx, orgID, priorPrior.SemesterIDs)
	if err != nil {
		a.log.Warn("reports.aggregate: two periods back unavailable, new counts zeroed",
			"organization_id", orgID, "semester_ids", priorPrior.SemesterIDs, "err", err)
		return withoutNew(memberCounts(priorRows, nil))
	}
	return memberCounts(priorRows, olderRows)
}

func (a *Aggregator) memberships(ctx context.Context, orgID uint, w Window) ([]MembershipRow, error) {
	if len(w.SemesterIDs) == 0 {
		return []MembershipRow{}, nil
	}
	return a.store.ListMemberships(ctx, orgID, w.SemesterIDs)
}

func withoutNew(c MemberCounts) MemberCounts {
	c.NewMembers = 0
	c.NewActiveMembers = 0
	return c
}

// memberCounts counts distinct members so a member present in several
// semesters of a year counts once.
func memberCounts(rows, previous []MembershipRow) MemberCounts {
	members, active := idSets(rows)
	prevMembers, prevActive := idSets(previous)

	return MemberCounts{
		TotalMembers:     len(members),
		ActiveMembers:    len(active),
		NewMembers:       len(difference(members, prevMembers)),
		NewActiveMembers: len(difference(active, prevActive)),
	}
}

func idSets(rows []MembershipRow) (map[uint]struct{}, map[uint]struct{}) {
	members := make(map[uint]struct{}, len(rows))
	active := make(map[uint]struct{})
	for _, row := range rows {
		members[row.MemberID] = struct{}{}
		if row.Active {
			active[row.MemberID] = struct{}{}
		}
	}
	return members, active
}

func difference(a, b map[uint]struct{}) []uint {
	result := make([]uint, 0, len(a))
	for id := range a {
		if _, ok := b[id]; !ok {
			result = append(result, id)
		}
	}
	return result
}

func meetingsData(events []EventAttendance) MeetingsData {
	data := MeetingsData{Events: make([]EventAttendance, 0, len(events))}
	for _, e := range events {
		switch event.Type(e.EventType) {
		case event.TypeGeneralMeeting:
			data.NumMeetings++
			data.MeetingAttendance += e.AttendanceCount
		case event.TypeVolunteer:
			data.NumVolunteer++
			data.VolunteerAttendance += e.AttendanceCount
		default:
			data.NumOther++
			data.OtherAttendance += e.AttendanceCount
		}
		data.TotalAttendance += e.AttendanceCount
		data.Events = append(data.Events, e)
	}
	return data
}

func eventTypeCounts(events []EventAttendance) map[string]int {
	counts := make(map[string]int, len(event.Types))
	for _, t := range event.Types {
		counts[string(t)] = 0
	}
	for _, e := range events {
		counts[e.EventType]++
	}
	return counts
}
