package semester

import (
	"context"
	"errors"

	"gorm.io/gorm"

	semesterdomain "member-tracker-go/internal/domain/semester"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListSemesters(ctx context.Context) ([]semesterdomain.Semester, error) {
	var semesters []semesterdomain.Semester
	if err := r.db.WithContext(ctx).Order("start_date asc").Order("id asc").Find(&semesters).Error; err != nil {
		return nil, err
	}
	return semesters, nil
}

func (r *PostgresRepository) GetSemester(ctx context.Context, id uint) (*semesterdomain.Semester, error) {
	var s semesterdomain.Semester
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, semesterdomain.ErrSemesterNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) CreateSemester(ctx context.Context, s *semesterdomain.Semester) error {
	return r.db.WithContext(ctx).Create(s).Error
}
