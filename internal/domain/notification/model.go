package notification

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindStatus             Kind = "status"
	KindSemesterReport     Kind = "semester_report"
	KindAnnualReport       Kind = "annual_report"
	KindMembershipAchieved Kind = "membership_achieved"
)

func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindStatus, KindSemesterReport, KindAnnualReport, KindMembershipAchieved:
		return Kind(value), true
	case "semester":
		return KindSemesterReport, true
	case "annual":
		return KindAnnualReport, true
	default:
		return "", false
	}
}

type Message struct {
	TemplateKind      Kind
	OrganizationEmail string
	RecipientEmail    string
	Subject           string
	Body              string
}

// DispatchKey identifies one logical delivery. A key is sent at most once.
type DispatchKey struct {
	OrganizationID uint
	PeriodKey      string
	Kind           Kind
	Recipient      string
}

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Dispatch is the ledger row claimed before a send.
type Dispatch struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uint      `gorm:"not null"`
	PeriodKey      string    `gorm:"size:64;not null"`
	Kind           Kind      `gorm:"type:varchar(32);not null"`
	Recipient      string    `gorm:"not null"`
	Status         Status    `gorm:"type:varchar(16);not null"`
	Error          string    `gorm:"not null;default:''"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Dispatch) TableName() string {
	return "report_dispatches"
}

// Outcome is what happened to a dispatch request.
type Outcome string

const (
	OutcomeSent      Outcome = "sent"
	OutcomeDisabled  Outcome = "disabled"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeNoAddress Outcome = "no_address"
	OutcomeFailed    Outcome = "failed"
)

// ReportDue asks the delivery worker to build and send one report kind for
// one organization. Year and SemesterID default to the current period.
type ReportDue struct {
	OrganizationID uint
	Kind           Kind
	Year           *int
	SemesterID     *uint
}
