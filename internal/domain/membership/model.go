package membership

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

type Role int

const (
	RoleMember Role = iota
	RoleEboard
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleEboard:
		return "eboard"
	case RoleAdmin:
		return "admin"
	default:
		return "member"
	}
}

// AtLeast reports whether r grants the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

func ParseRole(value string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "member", "":
		return RoleMember, nil
	case "eboard":
		return RoleEboard, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleMember, fmt.Errorf("unknown role %q", value)
	}
}

// Membership ties a member to an organization for one semester. ActiveMember
// and ReceivedBonus are owned by the evaluator and only change on recompute.
type Membership struct {
	ID             uint          `gorm:"primaryKey"`
	MemberID       uint          `gorm:"not null;index"`
	OrganizationID uint          `gorm:"not null;index"`
	SemesterID     uint          `gorm:"not null;index"`
	Role           Role          `gorm:"type:smallint;not null;default:0"`
	Points         int           `gorm:"not null;default:0"`
	ActiveMember   bool          `gorm:"not null;default:false"`
	ReceivedBonus  pq.Int64Array `gorm:"type:bigint[];not null;default:'{}'"`
	CreatedAt      time.Time     `gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime"`
}

func (m Membership) HasBonus(id uint) bool {
	for _, received := range m.ReceivedBonus {
		if received == int64(id) {
			return true
		}
	}
	return false
}

const RecognitionActiveMembership = "active_membership"

// Recognition records that a member reached active status in a semester.
type Recognition struct {
	ID             uint      `gorm:"primaryKey"`
	OrganizationID uint      `gorm:"not null;index"`
	MemberID       uint      `gorm:"not null;index"`
	SemesterID     uint      `gorm:"not null;index"`
	Kind           string    `gorm:"size:32;not null"`
	AwardedAt      time.Time `gorm:"not null;index"`
}

type JoinInput struct {
	OrganizationID uint `json:"organization_id" validate:"required"`
	MemberID       uint `json:"member_id" validate:"required"`
	SemesterID     uint `json:"semester_id" validate:"required"`
	Role           Role `json:"role" validate:"gte=0,lte=2"`
}

type CreditInput struct {
	OrganizationID uint
	SemesterID     uint
	MemberID       uint
	EventType      string
}

// TypeStats is one member's attendance for an event type within a semester
// against the number of events of that type held.
type TypeStats struct {
	Attended int
	Total    int
}

func (s TypeStats) Percent() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Attended) / float64(s.Total) * 100
}
