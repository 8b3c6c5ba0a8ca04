package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"member-tracker-go/pkg/logger"
)

const shutdownGrace = 30 * time.Second

// Scheduler runs registered jobs on cron specs. Every run shares a base
// context that Shutdown cancels.
type Scheduler struct {
	cron   *cron.Cron
	log    logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

// Info logs routine messages about cron's operation.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.InternalError(msg, err, keysAndValues...)
}

func NewScheduler(log logger.Logger) *Scheduler {
	log = log.With("component", "cron")
	clog := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog))),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers fn under name.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context)) error {
	if spec == "" {
		s.log.Info("jobs: schedule disabled", "job", name)
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.job(name, fn)); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.Info("jobs: scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) job(name string, fn func(ctx context.Context)) func() {
	return func() {
		started := time.Now()
		s.log.Info("jobs: run started", "job", name)
		fn(s.ctx)
		s.log.Info("jobs: run finished", "job", name, "elapsed", time.Since(started).String())
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Shutdown stops scheduling and waits for running jobs. Jobs still running
// after the grace period have their context cancelled and are waited for.
func (s *Scheduler) Shutdown() {
	s.shutdown(shutdownGrace)
}

func (s *Scheduler) shutdown(grace time.Duration) {
	stopped := s.cron.Stop()
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-stopped.Done():
	case <-timer.C:
		s.log.Warn("jobs: shutdown grace expired, cancelling running jobs", "grace", grace.String())
	}
	s.cancel()
	<-stopped.Done()
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}
