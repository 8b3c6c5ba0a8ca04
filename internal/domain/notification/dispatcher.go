package notification

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"member-tracker-go/internal/domain/organization"
	"member-tracker-go/pkg/logger"
)

// Dispatcher gates sends on organization settings and the dispatch ledger.
// It never returns an error: failures are logged, recorded and counted.
type Dispatcher struct {
	settings SettingsGetter
	ledger   Ledger
	sender   Sender
	from     string
	metrics  Metrics
	log      logger.Logger
}

func NewDispatcher(settings SettingsGetter, ledger Ledger, sender Sender, from string, metrics Metrics, log logger.Logger) *Dispatcher {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Dispatcher{
		settings: settings,
		ledger:   ledger,
		sender:   sender,
		from:     from,
		metrics:  metrics,
		log:      log,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, key DispatchKey, msg Message) Outcome {
	outcome := d.dispatch(ctx, key, msg)
	d.metrics.DispatchOutcome(key.Kind, outcome)
	return outcome
}

func (d *Dispatcher) dispatch(ctx context.Context, key DispatchKey, msg Message) Outcome {
	log := d.log.With("organization_id", key.OrganizationID, "kind", key.Kind, "period", key.PeriodKey)

	key.Recipient = strings.ToLower(strings.TrimSpace(key.Recipient))
	if key.Recipient == "" {
		log.Warn("notifications.dispatch: no recipient address")
		return OutcomeNoAddress
	}

	enabled, err := d.enabled(ctx, key)
	if err != nil {
		log.InternalError("notifications.dispatch: load email settings failed", err)
		return OutcomeFailed
	}
	if !enabled {
		log.Debug("notifications.dispatch: disabled by email settings")
		return OutcomeDisabled
	}

	record := Dispatch{
		ID:             uuid.New(),
		OrganizationID: key.OrganizationID,
		PeriodKey:      key.PeriodKey,
		Kind:           key.Kind,
		Recipient:      key.Recipient,
		Status:         StatusPending,
	}
	claimed, err := d.ledger.Claim(ctx, &record)
	if err != nil {
		log.InternalError("notifications.dispatch: claim ledger row failed", err)
		return OutcomeFailed
	}
	if !claimed {
		log.Debug("notifications.dispatch: already dispatched", "recipient", key.Recipient)
		return OutcomeDuplicate
	}

	if err := d.sender.Send(ctx, d.from, key.Recipient, msg.Subject, msg.Body); err != nil {
		log.InternalError("notifications.dispatch: send failed", err, "dispatch_id", record.ID)
		d.finish(ctx, log, record.ID, StatusFailed, err.Error())
		return OutcomeFailed
	}

	d.finish(ctx, log, record.ID, StatusSent, "")
	log.Info("notifications.dispatch: sent", "dispatch_id", record.ID)
	return OutcomeSent
}

func (d *Dispatcher) enabled(ctx context.Context, key DispatchKey) (bool, error) {
	settings, err := d.settings.GetEmailSettings(ctx, key.OrganizationID)
	if errors.Is(err, organization.ErrEmailSettingsNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch key.Kind {
	case KindStatus:
		return settings.StatusEmails, nil
	case KindSemesterReport:
		return settings.SemesterReport, nil
	case KindAnnualReport:
		return settings.AnnualReport, nil
	case KindMembershipAchieved:
		return settings.MembershipAchieved, nil
	default:
		return false, nil
	}
}

func (d *Dispatcher) finish(ctx context.Context, log logger.Logger, id uuid.UUID, status Status, errMsg string) {
	// The send already happened; a detached context keeps the ledger in
	// step even when the caller's context is done.
	if err := d.ledger.Finish(context.WithoutCancel(ctx), id, status, errMsg); err != nil {
		log.InternalError("notifications.dispatch: record outcome failed", err, "dispatch_id", id, "status", status)
	}
}
