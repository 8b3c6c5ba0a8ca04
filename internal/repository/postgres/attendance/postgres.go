package attendance

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	attendancedomain "member-tracker-go/internal/domain/attendance"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateAttendance(ctx context.Context, a *attendancedomain.Attendance) (bool, error) {
	db := r.db.WithContext(ctx)
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}, {Name: "event_id"}},
		DoNothing: true,
	}).Create(a)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var existing attendancedomain.Attendance
	if err := db.Where("member_id = ? AND event_id = ?", a.MemberID, a.EventID).First(&existing).Error; err != nil {
		return false, err
	}
	*a = existing
	return false, nil
}

func (r *PostgresRepository) DeleteAttendance(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&attendancedomain.Attendance{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("attendance %d not found", id)
	}
	return nil
}

func (r *PostgresRepository) ListForEvent(ctx context.Context, eventID uint) ([]attendancedomain.Attendee, error) {
	type attendeeRow struct {
		attendancedomain.Attendance
		MemberName  string `gorm:"column:member_name"`
		MemberEmail string `gorm:"column:member_email"`
	}

	var rows []attendeeRow
	if err := r.db.WithContext(ctx).
		Table("attendances").
		Select("attendances.*, members.name AS member_name, members.email AS member_email").
		Joins("join members on members.id = attendances.member_id").
		Where("attendances.event_id = ?", eventID).
		Order("attendances.checked_in_at asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	attendees := make([]attendancedomain.Attendee, 0, len(rows))
	for _, row := range rows {
		attendees = append(attendees, attendancedomain.Attendee{
			Attendance:  row.Attendance,
			MemberName:  row.MemberName,
			MemberEmail: row.MemberEmail,
		})
	}
	return attendees, nil
}
