package jobs

import (
	"context"

	"member-tracker-go/internal/config"
	"member-tracker-go/internal/domain/notification"
)

const (
	JobSemesterReport = "semester-report"
	JobAnnualReport   = "annual-report"
	JobStatusEmails   = "status-emails"
)

// Register schedules the report jobs on s.
func Register(s *Scheduler, d *Deliverer, cfg config.JobsConfig) error {
	jobs := []struct {
		name string
		spec string
		kind notification.Kind
	}{
		{JobSemesterReport, cfg.SemesterReportSpec, notification.KindSemesterReport},
		{JobAnnualReport, cfg.AnnualReportSpec, notification.KindAnnualReport},
		{JobStatusEmails, cfg.StatusEmailSpec, notification.KindStatus},
	}

	for _, job := range jobs {
		job := job
		err := s.Add(job.name, job.spec, func(ctx context.Context) {
			d.deps.Metrics.JobRun(job.name)
			summary, err := d.RunPass(ctx, job.kind)
			if err != nil {
				d.log.InternalError("jobs: pass failed", err, "job", job.name)
				return
			}
			d.log.Info("jobs: pass complete", "job", job.name, "events", summary.Events, "failed", summary.Failed)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
