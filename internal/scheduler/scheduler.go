// Package scheduler runs a job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorhill/cronexpr"
)

// Job is the scheduled work. An error is logged and does not stop the
// schedule.
type Job func(ctx context.Context) error

// Scheduler fires a Job at every time matched by a cron expression.
type Scheduler struct {
	schedule string
	expr     *cronexpr.Expression
	job      Job
	logger   *slog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// New parses schedule (a standard five-field cron, optionally with seconds and
// year fields) and returns a scheduler for job.
func New(schedule string, job Job, logger *slog.Logger) (*Scheduler, error) {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("scheduler: parse %q: %w", schedule, err)
	}
	return &Scheduler{
		schedule: schedule,
		expr:     expr,
		job:      job,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
	}, nil
}

// Next returns the first run time strictly after from, or the zero time when
// the expression never matches again.
func (s *Scheduler) Next(from time.Time) time.Time {
	return s.expr.Next(from)
}

// Run blocks until ctx is cancelled, running the job at each scheduled time.
// Runs never overlap: a run that overlaps the next slot skips it.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler: started", slog.String("schedule", s.schedule))
	for {
		if ctx.Err() != nil {
			s.logger.Info("scheduler: stopped")
			return nil
		}
		next := s.expr.Next(s.now())
		if next.IsZero() {
			s.logger.Warn("scheduler: no further runs", slog.String("schedule", s.schedule))
			<-ctx.Done()
			return nil
		}
		s.logger.Debug("scheduler: next run", slog.Time("at", next))

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler: stopped")
			return nil
		case <-s.after(next.Sub(s.now())):
		}

		start := s.now()
		if err := s.job(ctx); err != nil {
			s.logger.Error("scheduler: run failed",
				slog.String("error", err.Error()),
				slog.Duration("took", s.now().Sub(start)))
			continue
		}
		s.logger.Info("scheduler: run finished", slog.Duration("took", s.now().Sub(start)))
	}
}
