package semester

import (
	"strconv"
	"strings"
	"time"
)

type Semester struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"not null"`
	AcademicYear string    `gorm:"size:16;not null"`
	StartDate    time.Time `gorm:"type:date;not null;index"`
	EndDate      time.Time `gorm:"type:date;not null"`
}

// Contains reports whether t falls on or between the start and end dates.
// End dates are inclusive.
func (s Semester) Contains(t time.Time) bool {
	return !t.Before(s.StartDate) && t.Before(s.EndDate.AddDate(0, 0, 1))
}

// InYear reports whether the semester belongs to calendar year y: the
// academic year must mention y and the semester must start in y.
func (s Semester) InYear(y int) bool {
	if s.StartDate.Year() != y {
		return false
	}
	start, end, ok := parseAcademicYear(s.AcademicYear)
	if !ok {
		return false
	}
	return start == y || end == y
}

func parseAcademicYear(value string) (int, int, bool) {
	first, second, found := strings.Cut(strings.TrimSpace(value), "-")
	if !found {
		return 0, 0, false
	}
	start, err := strconv.Atoi(first)
	if err != nil {
		return 0, 0, false
	}
	end, err := strconv.Atoi(second)
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

type CreateInput struct {
	Name         string    `json:"name" validate:"notblank,max=64"`
	AcademicYear string    `json:"academic_year" validate:"required,academic_year"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
}
