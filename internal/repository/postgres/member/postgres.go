package member

import (
	"context"
	"errors"

	"gorm.io/gorm"

	memberdomain "member-tracker-go/internal/domain/member"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetMember(ctx context.Context, id uint) (*memberdomain.Member, error) {
	var m memberdomain.Member
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, memberdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) GetMemberByEmail(ctx context.Context, email string) (*memberdomain.Member, error) {
	var m memberdomain.Member
	err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).Limit(1).Find(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *PostgresRepository) ListMembersByIDs(ctx context.Context, ids []uint) ([]memberdomain.Member, error) {
	if len(ids) == 0 {
		return []memberdomain.Member{}, nil
	}
	var members []memberdomain.Member
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) CreateMember(ctx context.Context, m *memberdomain.Member) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return memberdomain.ErrEmailTaken
	}
	return err
}

func (r *PostgresRepository) UpdateMember(ctx context.Context, m *memberdomain.Member) error {
	result := r.db.WithContext(ctx).Model(m).Select(
		"name", "personal_email", "phone", "graduation_date", "tshirt_size", "major", "gender", "race", "status", "updated_at",
	).Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return memberdomain.ErrMemberNotFound
	}
	return nil
}
