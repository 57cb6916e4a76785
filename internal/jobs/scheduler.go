// Package jobs runs periodic maintenance work such as the counter sweep.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"nourish/internal/service"

	"github.com/robfig/cron/v3"
)

// Reconciler is the sweep the scheduler drives.
type Reconciler interface {
	Run(ctx context.Context) (*service.ReconcileReport, error)
}

// slogAdapter satisfies cron.Logger on top of slog.
type slogAdapter struct {
	l *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.l.Debug("cron: "+msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.l.Error("cron: "+msg, append(keysAndValues, slog.String("error", err.Error()))...)
}

// Scheduler wraps a cron instance with the application's jobs.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// NewScheduler returns an idle scheduler. Each run is bounded by timeout.
func NewScheduler(logger *slog.Logger, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	adapter := slogAdapter{l: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger:  logger,
		timeout: timeout,
	}
}

// ScheduleReconcile registers r on spec. An empty spec disables the job.
func (s *Scheduler) ScheduleReconcile(spec string, r Reconciler) (cron.EntryID, error) {
	if spec == "" {
		return 0, nil
	}
	return s.cron.AddFunc(spec, func() {
		s.runReconcile(r)
	})
}

func (s *Scheduler) runReconcile(r Reconciler) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := r.Run(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled reconcile failed", slog.String("error", err.Error()))
		return
	}
	s.logger.InfoContext(ctx, "scheduled reconcile finished",
		slog.Int("followers_repaired", len(report.FollowersRepaired)),
		slog.Int("replies_repaired", len(report.RepliesRepaired)),
	)
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
