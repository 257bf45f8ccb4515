// Package jobs runs periodic background work alongside the web server.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vbonduro/loandesk/internal/domain"
)

const overdueJobName = "overdue-scan"

// overdueSource is the subset of service.LoanService the scan needs.
type overdueSource interface {
	Overdue(ctx context.Context) ([]*domain.Payment, error)
	Today() time.Time
}

// OverdueScanner reports unpaid payments that are past their due date.
type OverdueScanner struct {
	source overdueSource
	logger *slog.Logger
}

func NewOverdueScanner(source overdueSource, logger *slog.Logger) *OverdueScanner {
	return &OverdueScanner{source: source, logger: logger}
}

// Scan logs every overdue payment and returns how many there were.
func (o *OverdueScanner) Scan(ctx context.Context) (int, error) {
	payments, err := o.source.Overdue(ctx)
	if err != nil {
		o.logger.Error("overdue scan failed", "error", err)
		return 0, err
	}

	today := o.source.Today()
	loans := make(map[int64]struct{})
	for _, p := range payments {
		loans[p.LoanID] = struct{}{}
		o.logger.Warn("payment overdue",
			"loan_id", p.LoanID,
			"payment_id", p.ID,
			"number", p.Number,
			"due_date", p.DueDate.Format(domain.DateLayout),
			"days_late", int(today.Sub(p.DueDate).Hours()/24),
			"amount", p.Amount.StringFixed(2),
		)
	}
	o.logger.Info("overdue scan complete", "overdue_payments", len(payments), "loans", len(loans))
	return len(payments), nil
}

// Scheduler runs the overdue scan on a fixed interval.
type Scheduler struct {
	scheduler gocron.Scheduler
	job       gocron.Job
	logger    *slog.Logger
}

// NewScheduler registers the scan to run every interval, starting as soon as
// the scheduler starts. A run still in progress when the next one is due
// causes that next run to be skipped.
func NewScheduler(scanner *OverdueScanner, interval time.Duration, logger *slog.Logger, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	job, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			_, _ = scanner.Scan(context.Background())
		}),
		gocron.WithName(overdueJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create %s job: %w", overdueJobName, err)
	}

	return &Scheduler{scheduler: s, job: job, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("starting background jobs", "job", s.job.Name())
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.logger.Info("stopping background jobs")
	return s.scheduler.Shutdown()
}
