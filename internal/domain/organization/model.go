package organization

import "time"

type MembershipType string

const (
	MembershipPoints     MembershipType = "points"
	MembershipAttendance MembershipType = "attendance"
)

type RequirementType string

const (
	RequirementPoints          RequirementType = "points"
	RequirementPercentage      RequirementType = "percentage"
	RequirementAttendanceCount RequirementType = "attendance_count"
)

type Organization struct {
	ID              uint           `gorm:"primaryKey"`
	Name            string         `gorm:"not null"`
	Abbreviation    string         `gorm:"not null;default:''"`
	Description     string         `gorm:"not null;default:''"`
	Color           string         `gorm:"size:16;not null;default:''"`
	Email           string         `gorm:"not null;default:''"`
	Phone           string         `gorm:"size:32;not null;default:''"`
	MembershipType  MembershipType `gorm:"type:varchar(16);not null"`
	ActiveThreshold int            `gorm:"not null;default:0"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

type MembershipRequirement struct {
	ID              uint            `gorm:"primaryKey"`
	OrganizationID  uint            `gorm:"index;not null"`
	EventType       string          `gorm:"type:varchar(32);not null"`
	RequirementType RequirementType `gorm:"type:varchar(32);not null"`
	Value           float64         `gorm:"not null"`
	Position        int             `gorm:"not null;default:0"`

	Bonuses []BonusRule `gorm:"foreignKey:RequirementID;constraint:OnDelete:CASCADE"`
}

type BonusRule struct {
	ID               uint    `gorm:"primaryKey"`
	RequirementID    uint    `gorm:"index;not null"`
	ThresholdPercent float64 `gorm:"not null"`
	BonusPoints      int     `gorm:"not null"`
}

type EmailSettings struct {
	ID                 uint `gorm:"primaryKey"`
	OrganizationID     uint `gorm:"uniqueIndex;not null"`
	StatusEmails       bool `gorm:"not null;default:false"`
	AnnualReport       bool `gorm:"not null;default:false"`
	SemesterReport     bool `gorm:"not null;default:false"`
	MembershipAchieved bool `gorm:"not null;default:false"`
}

func (EmailSettings) TableName() string {
	return "email_settings"
}

type CreateInput struct {
	Name            string         `json:"name" validate:"notblank,max=200"`
	Abbreviation    string         `json:"abbreviation" validate:"max=16"`
	Description     string         `json:"description" validate:"max=2000"`
	Color           string         `json:"color" validate:"hexcolor_or_empty"`
	Email           string         `json:"email" validate:"omitempty,email"`
	Phone           string         `json:"phone" validate:"max=32"`
	MembershipType  MembershipType `json:"membership_type" validate:"required,oneof=points attendance"`
	ActiveThreshold int            `json:"active_threshold" validate:"gte=0"`
}

// UpdateInput changes only the non-nil fields.
type UpdateInput struct {
	Name            *string         `json:"name" validate:"omitempty,notblank,max=200"`
	Abbreviation    *string         `json:"abbreviation" validate:"omitempty,max=16"`
	Description     *string         `json:"description" validate:"omitempty,max=2000"`
	Color           *string         `json:"color" validate:"omitempty,hexcolor_or_empty"`
	Email           *string         `json:"email" validate:"omitempty,email"`
	Phone           *string         `json:"phone" validate:"omitempty,max=32"`
	MembershipType  *MembershipType `json:"membership_type" validate:"omitempty,oneof=points attendance"`
	ActiveThreshold *int            `json:"active_threshold" validate:"omitempty,gte=0"`
}

type BonusInput struct {
	ThresholdPercent float64 `json:"threshold_percent" validate:"gt=0,lte=100"`
	BonusPoints      int     `json:"bonus_points" validate:"gt=0"`
}

type RequirementInput struct {
	EventType       string          `json:"event_type" validate:"required,oneof=general_meeting volunteer social workshop fundraiser committee"`
	RequirementType RequirementType `json:"requirement_type" validate:"required,oneof=points percentage attendance_count"`
	Value           float64         `json:"value" validate:"gte=0"`
	Bonuses         []BonusInput    `json:"bonuses" validate:"dive"`
}

type EmailSettingsInput struct {
	StatusEmails       bool `json:"status_emails"`
	AnnualReport       bool `json:"annual_report"`
	SemesterReport     bool `json:"semester_report"`
	MembershipAchieved bool `json:"membership_achieved"`
}
