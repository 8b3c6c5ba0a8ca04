package notification

import (
	"context"

	"github.com/google/uuid"

	"member-tracker-go/internal/domain/organization"
)

// Sender delivers one html email.
type Sender interface {
	Send(ctx context.Context, from, to, subject, htmlBody string) error
}

type SettingsGetter interface {
	GetEmailSettings(ctx context.Context, orgID uint) (*organization.EmailSettings, error)
}

type Ledger interface {
	// Claim inserts d and reports false when its key was already claimed.
	Claim(ctx context.Context, d *Dispatch) (bool, error)
	Finish(ctx context.Context, id uuid.UUID, status Status, errMsg string) error
}

type Metrics interface {
	DispatchOutcome(kind Kind, outcome Outcome)
}

type nopMetrics struct{}

func (nopMetrics) DispatchOutcome(Kind, Outcome) {}
