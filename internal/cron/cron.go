package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/comanda-pos/backend/pkg/logger"
	"github.com/comanda-pos/backend/pkg/metrics"
)

// Job is a unit of scheduled background work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner executes registered jobs on a fixed interval. A job that is still
// running when its next tick arrives is skipped, not stacked.
type Runner struct {
	interval time.Duration
	jobs     []Job
	logger   *logger.Logger
	metrics  *metrics.Set

	mu      sync.Mutex
	running map[string]bool
}

// NewRunner builds the cron runner.
func NewRunner(interval time.Duration, logg *logger.Logger, set *metrics.Set, jobs ...Job) (*Runner, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if set == nil {
		return nil, fmt.Errorf("metrics are required")
	}
	return &Runner{
		interval: interval,
		jobs:     jobs,
		logger:   logg,
		metrics:  set,
		running:  make(map[string]bool),
	}, nil
}

// Start blocks until ctx is cancelled, firing all jobs every interval.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info(ctx, fmt.Sprintf("cron runner started with %d jobs", len(r.jobs)))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info(ctx, "cron runner stopped")
			return
		case <-ticker.C:
			r.RunAll(ctx)
		}
	}
}

// RunAll fires every registered job once, sequentially.
func (r *Runner) RunAll(ctx context.Context) {
	for _, job := range r.jobs {
		r.runOne(ctx, job)
	}
}

func (r *Runner) runOne(ctx context.Context, job Job) {
	name := job.Name()

	r.mu.Lock()
	if r.running[name] {
		r.mu.Unlock()
		r.logger.Warn(ctx, fmt.Sprintf("cron job %s still running, skipping tick", name))
		return
	}
	r.running[name] = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.running, name)
		r.mu.Unlock()
	}()

	start := time.Now()
	err := job.Run(ctx)
	elapsed := time.Since(start)

	r.metrics.CronRuns.WithLabelValues(name).Inc()
	r.metrics.CronDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		r.metrics.CronFailures.WithLabelValues(name).Inc()
		r.logger.Error(ctx, fmt.Sprintf("cron job %s failed", name), err)
		return
	}
	r.logger.Info(ctx, fmt.Sprintf("cron job %s finished in %s", name, elapsed))
}
