package event

import (
	"context"
	"errors"

	"gorm.io/gorm"

	eventdomain "member-tracker-go/internal/domain/event"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, e *eventdomain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *PostgresRepository) GetEvent(ctx context.Context, orgID, eventID uint) (*eventdomain.Event, error) {
	var e eventdomain.Event
	if err := r.db.WithContext(ctx).Where("organization_id = ? AND id = ?", orgID, eventID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, eventdomain.ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PostgresRepository) ListEvents(ctx context.Context, orgID uint, filter eventdomain.ListFilter) ([]eventdomain.Event, error) {
	query := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if filter.SemesterID != nil {
		query = query.Where("semester_id = ?", *filter.SemesterID)
	}
	if filter.From != nil {
		query = query.Where("start_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_at < ?", *filter.To)
	}

	var events []eventdomain.Event
	if err := query.Order("start_at asc").Order("id asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, e *eventdomain.Event) error {
	result := r.db.WithContext(ctx).Model(e).
		Where("organization_id = ?", e.OrganizationID).
		Select("semester_id", "name", "start_at", "end_at", "location", "description", "event_type", "updated_at").
		Updates(e)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return eventdomain.ErrEventNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteEvent(ctx context.Context, orgID, eventID uint) error {
	result := r.db.WithContext(ctx).Delete(&eventdomain.Event{}, "organization_id = ? AND id = ?", orgID, eventID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return eventdomain.ErrEventNotFound
	}
	return nil
}

func (r *PostgresRepository) CountByType(ctx context.Context, orgID, semesterID uint) (map[eventdomain.Type]int, error) {
	type countRow struct {
		EventType eventdomain.Type `gorm:"column:event_type"`
		Count     int              `gorm:"column:count"`
	}

	var rows []countRow
	if err := r.db.WithContext(ctx).
		Model(&eventdomain.Event{}).
		Select("event_type, COUNT(*) AS count").
		Where("organization_id = ? AND semester_id = ?", orgID, semesterID).
		Group("event_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[eventdomain.Type]int, len(eventdomain.Types))
	for _, t := range eventdomain.Types {
		counts[t] = 0
	}
	for _, row := range rows {
		counts[row.EventType] = row.Count
	}
	return counts, nil
}
