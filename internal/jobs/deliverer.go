package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"member-tracker-go/internal/domain/member"
	"member-tracker-go/internal/domain/membership"
	"member-tracker-go/internal/domain/notification"
	"member-tracker-go/internal/domain/organization"
	"member-tracker-go/internal/domain/report"
	"member-tracker-go/internal/domain/semester"
	"member-tracker-go/pkg/logger"
)

var errDispatchFailed = errors.New("dispatch failed")

type OrganizationSource interface {
	List(ctx context.Context) ([]organization.Organization, error)
	Get(ctx context.Context, id uint) (*organization.Organization, error)
}

type ReportBuilder interface {
	SemesterReport(ctx context.Context, orgID uint, semesterID *uint) (report.Report, error)
	AnnualReport(ctx context.Context, orgID uint, year *int) (report.Report, error)
}

type StatusSource interface {
	List(ctx context.Context, orgID, semesterID uint) ([]membership.Membership, error)
	Status(ctx context.Context, orgID, id uint) (*membership.Membership, membership.Evaluation, error)
}

type MemberGetter interface {
	Get(ctx context.Context, id uint) (*member.Member, error)
}

type SemesterSource interface {
	Current(ctx context.Context, now time.Time) (*semester.Semester, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, key notification.DispatchKey, msg notification.Message) notification.Outcome
}

type Metrics interface {
	ReportBuilt(kind notification.Kind, elapsed time.Duration, err error)
	Delivered(kind notification.Kind, err error)
	JobRun(job string)
}

type nopMetrics struct{}

func (nopMetrics) ReportBuilt(notification.Kind, time.Duration, error) {}
func (nopMetrics) Delivered(notification.Kind, error)                 {}
func (nopMetrics) JobRun(string)                                      {}

type Deps struct {
	Organizations OrganizationSource
	Reports       ReportBuilder
	Statuses      StatusSource
	Members       MemberGetter
	Semesters     SemesterSource
	Renderer      *notification.Renderer
	Dispatcher    Dispatcher
	Metrics       Metrics
}

// Summary counts what one delivery pass did.
type Summary struct {
	Events int
	Failed int
}

// Deliverer consumes ReportDue events with bounded concurrency.
type Deliverer struct {
	deps    Deps
	workers int
	log     logger.Logger
	now     func() time.Time
}

func NewDeliverer(deps Deps, workers int, log logger.Logger) *Deliverer {
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if workers < 1 {
		workers = 1
	}
	return &Deliverer{
		deps:    deps,
		workers: workers,
		log:     log.With("component", "deliverer"),
		now:     time.Now,
	}
}

// Due lists one event of kind per organization. Annual events cover the
// last completed calendar year.
func (d *Deliverer) Due(ctx context.Context, kind notification.Kind) ([]notification.ReportDue, error) {
	orgs, err := d.deps.Organizations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	var year *int
	if kind == notification.KindAnnualReport {
		completed := d.now().Year() - 1
		year = &completed
	}

	events := make([]notification.ReportDue, 0, len(orgs))
	for _, org := range orgs {
		events = append(events, notification.ReportDue{OrganizationID: org.ID, Kind: kind, Year: year})
	}
	return events, nil
}

// RunPass emits and delivers one round of kind for every organization.
func (d *Deliverer) RunPass(ctx context.Context, kind notification.Kind) (Summary, error) {
	events, err := d.Due(ctx, kind)
	if err != nil {
		return Summary{}, err
	}
	return d.Deliver(ctx, events)
}

// Deliver handles every event. A failing organization is logged and
// counted; it never stops the others. The returned error is only set when
// ctx ends the pass early.
func (d *Deliverer) Deliver(ctx context.Context, events []notification.ReportDue) (Summary, error) {
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for _, ev := range events {
		if gctx.Err() != nil {
			break
		}
		ev := ev
		g.Go(func() error {
			err := d.deliver(gctx, ev)
			d.deps.Metrics.Delivered(ev.Kind, err)
			if err != nil {
				failed.Add(1)
				d.log.InternalError("jobs.deliver: delivery failed", err,
					"organization_id", ev.OrganizationID, "kind", ev.Kind)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{Events: len(events), Failed: int(failed.Load())}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (d *Deliverer) deliver(ctx context.Context, ev notification.ReportDue) error {
	switch ev.Kind {
	case notification.KindSemesterReport, notification.KindAnnualReport:
		return d.deliverReport(ctx, ev)
	case notification.KindStatus:
		return d.deliverStatus(ctx, ev)
	default:
		return fmt.Errorf("unsupported delivery kind %q", ev.Kind)
	}
}

func (d *Deliverer) deliverReport(ctx context.Context, ev notification.ReportDue) error {
	started := d.now()
	var (
		rep report.Report
		err error
	)
	if ev.Kind == notification.KindSemesterReport {
		rep, err = d.deps.Reports.SemesterReport(ctx, ev.OrganizationID, ev.SemesterID)
	} else {
		rep, err = d.deps.Reports.AnnualReport(ctx, ev.OrganizationID, ev.Year)
	}
	d.deps.Metrics.ReportBuilt(ev.Kind, d.now().Sub(started), err)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	msg, err := d.deps.Renderer.PeriodReport(rep)
	if err != nil {
		return err
	}

	outcome := d.deps.Dispatcher.Dispatch(ctx, notification.DispatchKey{
		OrganizationID: ev.OrganizationID,
		PeriodKey:      rep.Summary().Period.Key(),
		Kind:           ev.Kind,
		Recipient:      msg.RecipientEmail,
	}, msg)
	if outcome == notification.OutcomeFailed {
		return errDispatchFailed
	}
	return nil
}

// deliverStatus emails every member of the organization's current semester.
func (d *Deliverer) deliverStatus(ctx context.Context, ev notification.ReportDue) error {
	now := d.now()
	org, err := d.deps.Organizations.Get(ctx, ev.OrganizationID)
	if err != nil {
		return fmt.Errorf("load organization: %w", err)
	}
	sem, err := d.deps.Semesters.Current(ctx, now)
	if err != nil {
		return fmt.Errorf("current semester: %w", err)
	}
	memberships, err := d.deps.Statuses.List(ctx, org.ID, sem.ID)
	if err != nil {
		return fmt.Errorf("list memberships: %w", err)
	}

	periodKey := notification.StatusPeriodKey(sem.ID, now)
	failures := 0
	for _, ms := range memberships {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.statusFor(ctx, *org, *sem, ms, periodKey); err != nil {
			failures++
			d.log.InternalError("jobs.status: member status failed", err,
				"organization_id", org.ID, "membership_id", ms.ID)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d status emails failed", failures, len(memberships))
	}
	return nil
}

func (d *Deliverer) statusFor(ctx context.Context, org organization.Organization, sem semester.Semester, ms membership.Membership, periodKey string) error {
	_, evaluation, err := d.deps.Statuses.Status(ctx, org.ID, ms.ID)
	if err != nil {
		return err
	}
	m, err := d.deps.Members.Get(ctx, ms.MemberID)
	if err != nil {
		return err
	}
	msg, err := d.deps.Renderer.Status(org, *m, sem, evaluation)
	if err != nil {
		return err
	}

	outcome := d.deps.Dispatcher.Dispatch(ctx, notification.DispatchKey{
		OrganizationID: org.ID,
		PeriodKey:      periodKey,
		Kind:           notification.KindStatus,
		Recipient:      msg.RecipientEmail,
	}, msg)
	if outcome == notification.OutcomeFailed {
		return errDispatchFailed
	}
	return nil
}
