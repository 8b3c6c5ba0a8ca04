package membership

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	membershipdomain "member-tracker-go/internal/domain/membership"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(membershipdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateMembership(ctx context.Context, m *membershipdomain.Membership) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return membershipdomain.ErrAlreadyMember
	}
	return err
}

func (r *PostgresRepository) EnsureMembership(ctx context.Context, m *membershipdomain.Membership) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}, {Name: "member_id"}, {Name: "semester_id"}},
			DoNothing: true,
		}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) GetMembership(ctx context.Context, orgID, id uint) (*membershipdomain.Membership, error) {
	var m membershipdomain.Membership
	if err := r.db.WithContext(ctx).Where("organization_id = ? AND id = ?", orgID, id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membershipdomain.ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) LockMembership(ctx context.Context, id uint) (*membershipdomain.Membership, error) {
	var m membershipdomain.Membership
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membershipdomain.ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) FindMembership(ctx context.Context, orgID, memberID, semesterID uint) (*membershipdomain.Membership, error) {
	var m membershipdomain.Membership
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND member_id = ? AND semester_id = ?", orgID, memberID, semesterID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membershipdomain.ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) ListMemberships(ctx context.Context, orgID, semesterID uint) ([]membershipdomain.Membership, error) {
	var memberships []membershipdomain.Membership
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND semester_id = ?", orgID, semesterID).
		Order("id asc").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *PostgresRepository) ListMemberMemberships(ctx context.Context, orgID, memberID uint) ([]membershipdomain.Membership, error) {
	var memberships []membershipdomain.Membership
	if err := r.db.WithContext(ctx).
		Table("memberships").
		Select("memberships.*").
		Joins("join semesters on semesters.id = memberships.semester_id").
		Where("memberships.organization_id = ? AND memberships.member_id = ?", orgID, memberID).
		Order("semesters.start_date asc").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id uint, role membershipdomain.Role) error {
	result := r.db.WithContext(ctx).Model(&membershipdomain.Membership{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return membershipdomain.ErrMembershipNotFound
	}
	return nil
}

// SaveEvaluation persists the evaluator-owned columns.
func (r *PostgresRepository) SaveEvaluation(ctx context.Context, m *membershipdomain.Membership) error {
	return r.db.WithContext(ctx).Model(m).
		Select("points", "active_member", "received_bonus", "updated_at").
		Updates(m).Error
}

func (r *PostgresRepository) DeleteMembership(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&membershipdomain.Membership{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return membershipdomain.ErrMembershipNotFound
	}
	return nil
}

// AttendanceStats counts, per event type, the semester's events and how many
// of them the member attended.
func (r *PostgresRepository) AttendanceStats(ctx context.Context, orgID, semesterID, memberID uint) (map[string]membershipdomain.TypeStats, error) {
	type statsRow struct {
		EventType string `gorm:"column:event_type"`
		Total     int    `gorm:"column:total"`
		Attended  int    `gorm:"column:attended"`
	}

	var rows []statsRow
	if err := r.db.WithContext(ctx).
		Table("events").
		Select("events.event_type, COUNT(DISTINCT events.id) AS total, COUNT(DISTINCT attendances.event_id) AS attended").
		Joins("left join attendances on attendances.event_id = events.id and attendances.member_id = ?", memberID).
		Where("events.organization_id = ? AND events.semester_id = ?", orgID, semesterID).
		Group("events.event_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := make(map[string]membershipdomain.TypeStats, len(rows))
	for _, row := range rows {
		stats[row.EventType] = membershipdomain.TypeStats{Attended: row.Attended, Total: row.Total}
	}
	return stats, nil
}

func (r *PostgresRepository) CreateRecognition(ctx context.Context, rec *membershipdomain.Recognition) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
