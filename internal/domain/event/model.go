package event

import "time"

type Type string

const (
	TypeGeneralMeeting Type = "general_meeting"
	TypeVolunteer      Type = "volunteer"
	TypeSocial         Type = "social"
	TypeWorkshop       Type = "workshop"
	TypeFundraiser     Type = "fundraiser"
	TypeCommittee      Type = "committee"
)

var Types = []Type{
	TypeGeneralMeeting,
	TypeVolunteer,
	TypeSocial,
	TypeWorkshop,
	TypeFundraiser,
	TypeCommittee,
}

type Event struct {
	ID             uint      `gorm:"primaryKey"`
	OrganizationID uint      `gorm:"index;not null"`
	SemesterID     uint      `gorm:"index;not null"`
	Name           string    `gorm:"not null"`
	StartAt        time.Time `gorm:"not null"`
	EndAt          time.Time `gorm:"not null"`
	Location       string    `gorm:"not null;default:''"`
	Description    string    `gorm:"not null;default:''"`
	EventType      Type      `gorm:"type:varchar(32);not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// InProgress reports whether now is within the event's start and end.
func (e Event) InProgress(now time.Time) bool {
	return !now.Before(e.StartAt) && !now.After(e.EndAt)
}

type CreateInput struct {
	SemesterID  uint      `json:"semester_id" validate:"required"`
	Name        string    `json:"name" validate:"notblank,max=200"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	EndAt       time.Time `json:"end_at" validate:"required,gtefield=StartAt"`
	Location    string    `json:"location" validate:"max=200"`
	Description string    `json:"description" validate:"max=4000"`
	EventType   Type      `json:"event_type" validate:"required,oneof=general_meeting volunteer social workshop fundraiser committee"`
}

type ListFilter struct {
	SemesterID *uint
	From       *time.Time
	To         *time.Time
}
