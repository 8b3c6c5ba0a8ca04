package notification

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	notificationdomain "member-tracker-go/internal/domain/notification"
)

// PostgresLedger records dispatches in report_dispatches.
type PostgresLedger struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Claim(ctx context.Context, d *notificationdomain.Dispatch) (bool, error) {
	result := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}, {Name: "period_key"}, {Name: "kind"}, {Name: "recipient"}},
			DoNothing: true,
		}).
		Create(d)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (l *PostgresLedger) Finish(ctx context.Context, id uuid.UUID, status notificationdomain.Status, errMsg string) error {
	return l.db.WithContext(ctx).
		Model(&notificationdomain.Dispatch{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "error": errMsg}).Error
}

// List returns the organization's most recent dispatches.
func (l *PostgresLedger) List(ctx context.Context, orgID uint, limit int) ([]notificationdomain.Dispatch, error) {
	var dispatches []notificationdomain.Dispatch
	if err := l.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at desc").
		Limit(limit).
		Find(&dispatches).Error; err != nil {
		return nil, err
	}
	return dispatches, nil
}
