package report

import (
	"context"
	"time"

	"gorm.io/gorm"

	"member-tracker-go/internal/domain/membership"
	reportdomain "member-tracker-go/internal/domain/report"
)

// PostgresStore is the read side used by report assembly.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type membershipRow struct {
	MemberID     uint            `gorm:"column:member_id"`
	SemesterID   uint            `gorm:"column:semester_id"`
	Name         string          `gorm:"column:name"`
	Email        string          `gorm:"column:email"`
	Role         membership.Role `gorm:"column:role"`
	Points       int             `gorm:"column:points"`
	ActiveMember bool            `gorm:"column:active_member"`
}

func (row membershipRow) toDomain() reportdomain.MembershipRow {
	return reportdomain.MembershipRow{
		MemberID:   row.MemberID,
		SemesterID: row.SemesterID,
		Name:       row.Name,
		Email:      row.Email,
		Role:       row.Role,
		Points:     row.Points,
		Active:     row.ActiveMember,
	}
}

func (s *PostgresStore) membershipQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("memberships").
		Select("memberships.member_id, memberships.semester_id, members.name, members.email, memberships.role, memberships.points, memberships.active_member").
		Joins("join members on members.id = memberships.member_id")
}

func (s *PostgresStore) ListMemberships(ctx context.Context, orgID uint, semesterIDs []uint) ([]reportdomain.MembershipRow, error) {
	if len(semesterIDs) == 0 {
		return []reportdomain.MembershipRow{}, nil
	}

	var rows []membershipRow
	if err := s.membershipQuery(ctx).
		Where("memberships.organization_id = ? AND memberships.semester_id IN ?", orgID, semesterIDs).
		Order("memberships.member_id asc").
		Order("memberships.semester_id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toMembershipRows(rows), nil
}

func (s *PostgresStore) ListMemberMemberships(ctx context.Context, orgID, memberID uint) ([]reportdomain.MembershipRow, error) {
	var rows []membershipRow
	if err := s.membershipQuery(ctx).
		Joins("join semesters on semesters.id = memberships.semester_id").
		Where("memberships.organization_id = ? AND memberships.member_id = ?", orgID, memberID).
		Order("semesters.start_date asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toMembershipRows(rows), nil
}

func (s *PostgresStore) ListEventAttendance(ctx context.Context, orgID uint, from, to time.Time) ([]reportdomain.EventAttendance, error) {
	type eventRow struct {
		EventID         uint      `gorm:"column:event_id"`
		Name            string    `gorm:"column:name"`
		EventType       string    `gorm:"column:event_type"`
		StartAt         time.Time `gorm:"column:start_at"`
		AttendanceCount int       `gorm:"column:attendance_count"`
	}

	var rows []eventRow
	if err := s.db.WithContext(ctx).
		Table("events").
		Select("events.id AS event_id, events.name, events.event_type, events.start_at, COUNT(attendances.id) AS attendance_count").
		Joins("left join attendances on attendances.event_id = events.id").
		Where("events.organization_id = ? AND events.start_at >= ? AND events.start_at < ?", orgID, from, to).
		Group("events.id").
		Order("events.start_at asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]reportdomain.EventAttendance, 0, len(rows))
	for _, row := range rows {
		events = append(events, reportdomain.EventAttendance{
			EventID:         row.EventID,
			Name:            row.Name,
			EventType:       row.EventType,
			StartAt:         row.StartAt,
			AttendanceCount: row.AttendanceCount,
		})
	}
	return events, nil
}

func (s *PostgresStore) ListMemberAttendance(ctx context.Context, orgID, memberID uint) ([]reportdomain.AttendanceRow, error) {
	type attendanceRow struct {
		AttendanceID uint      `gorm:"column:attendance_id"`
		EventID      uint      `gorm:"column:event_id"`
		EventName    string    `gorm:"column:event_name"`
		EventType    string    `gorm:"column:event_type"`
		SemesterID   uint      `gorm:"column:semester_id"`
		StartAt      time.Time `gorm:"column:start_at"`
		CheckedInAt  time.Time `gorm:"column:checked_in_at"`
	}

	var rows []attendanceRow
	if err := s.db.WithContext(ctx).
		Table("attendances").
		Select("attendances.id AS attendance_id, events.id AS event_id, events.name AS event_name, events.event_type, events.semester_id, events.start_at, attendances.checked_in_at").
		Joins("join events on events.id = attendances.event_id").
		Where("events.organization_id = ? AND attendances.member_id = ?", orgID, memberID).
		Order("events.start_at asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]reportdomain.AttendanceRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, reportdomain.AttendanceRow(row))
	}
	return out, nil
}

func toMembershipRows(rows []membershipRow) []reportdomain.MembershipRow {
	out := make([]reportdomain.MembershipRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
