// Package jobs runs periodic background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/observability"

	"github.com/robfig/cron/v3"
)

const refreshTimeout = 10 * time.Second

// PendingCounter counts trade requests awaiting a decision.
type PendingCounter interface {
	CountAllPending(ctx context.Context) (int64, error)
}

// PendingGaugeJob refreshes the pending trade request gauge.
type PendingGaugeJob struct {
	counter PendingCounter
}

func NewPendingGaugeJob(counter PendingCounter) *PendingGaugeJob {
	return &PendingGaugeJob{counter: counter}
}

// Run implements cron.Job.
func (j *PendingGaugeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := j.RunContext(ctx); err != nil {
		observability.GlobalLogger.Warn("pending gauge refresh failed", slog.String("error", err.Error()))
	}
}

// RunContext sets the gauge to the current pending count.
func (j *PendingGaugeJob) RunContext(ctx context.Context) error {
	n, err := j.counter.CountAllPending(ctx)
	if err != nil {
		return err
	}
	observability.TradeRequestsPending.Set(float64(n))
	return nil
}

// Scheduler owns the cron runner for background jobs.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler returns a scheduler whose jobs recover from panics and never
// overlap with themselves.
func NewScheduler() *Scheduler {
	logger := slogCronLogger{}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
	}
}

// AddPendingGauge refreshes the gauge once now and then on spec.
func (s *Scheduler) AddPendingGauge(ctx context.Context, spec string, counter PendingCounter) error {
	job := NewPendingGaugeJob(counter)
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("schedule pending gauge %q: %w", spec, err)
	}
	if err := job.RunContext(ctx); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "initial pending gauge refresh failed",
			slog.String("error", err.Error()))
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

type slogCronLogger struct{}

func (slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	observability.GlobalLogger.Debug("cron: "+msg, keysAndValues...)
}

func (slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{slog.String("error", fmt.Sprint(err))}, keysAndValues...)
	observability.GlobalLogger.Error("cron: "+msg, args...)
}
