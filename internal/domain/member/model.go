package member

import "time"

type Status string

const (
	StatusUndergraduate Status = "undergraduate"
	StatusGraduate      Status = "graduate"
	StatusStaff         Status = "staff"
	StatusFaculty       Status = "faculty"
	StatusAlumni        Status = "alumni"
)

// Member is a person known to the system. Email is the institutional
// address and doubles as the username.
type Member struct {
	ID             uint       `gorm:"primaryKey"`
	Name           string     `gorm:"not null"`
	Email          string     `gorm:"not null;uniqueIndex"`
	PersonalEmail  string     `gorm:"not null;default:''"`
	Phone          string     `gorm:"size:32;not null;default:''"`
	GraduationDate *time.Time `gorm:"type:date"`
	TshirtSize     string     `gorm:"size:8;not null;default:''"`
	Major          string     `gorm:"not null;default:''"`
	Gender         string     `gorm:"not null;default:''"`
	Race           string     `gorm:"not null;default:''"`
	Status         Status     `gorm:"type:varchar(16);not null;default:''"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

// NewUserCheck is the result of resolving a login identity to a member.
type NewUserCheck struct {
	IsNewUser bool
	Member    *Member
}

type IdentityInput struct {
	Name  string `json:"name" validate:"notblank,max=200"`
	Email string `json:"email" validate:"required,email"`
}

type UpdateInput struct {
	Name           *string    `json:"name" validate:"omitempty,notblank,max=200"`
	PersonalEmail  *string    `json:"personal_email" validate:"omitempty,email"`
	Phone          *string    `json:"phone" validate:"omitempty,max=32"`
	GraduationDate *time.Time `json:"graduation_date"`
	TshirtSize     *string    `json:"tshirt_size" validate:"omitempty,oneof=XS S M L XL XXL"`
	Major          *string    `json:"major" validate:"omitempty,max=200"`
	Gender         *string    `json:"gender" validate:"omitempty,max=64"`
	Race           *string    `json:"race" validate:"omitempty,max=64"`
	Status         *Status    `json:"status" validate:"omitempty,oneof=undergraduate graduate staff faculty alumni"`
}
