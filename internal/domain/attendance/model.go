package attendance

import "time"

type Attendance struct {
	ID             uint      `gorm:"primaryKey"`
	MemberID       uint      `gorm:"not null"`
	EventID        uint      `gorm:"not null;index"`
	CheckedInAt    time.Time `gorm:"not null"`
	Notes          string    `gorm:"not null;default:''"`
	Rating         *int
	VolunteerHours *float64
}

// Attendee is an attendance row joined with the member it belongs to.
type Attendee struct {
	Attendance
	MemberName  string
	MemberEmail string
}

type RecordInput struct {
	MemberID       uint     `json:"member_id" validate:"required"`
	Notes          string   `json:"notes" validate:"max=2000"`
	Rating         *int     `json:"rating" validate:"omitempty,gte=1,lte=5"`
	VolunteerHours *float64 `json:"volunteer_hours" validate:"omitempty,gte=0,lte=24"`
}

// Recorded reports the outcome of recording one attendance. Created is false
// when the member was already marked present, in which case nothing was
// credited.
type Recorded struct {
	Attendance Attendance
	Created    bool
}

type RowError struct {
	Line    int    `json:"line"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ImportResult struct {
	Recorded       int        `json:"recorded"`
	Duplicates     int        `json:"duplicates"`
	CreatedMembers int        `json:"created_members"`
	Errors         []RowError `json:"errors"`
}
