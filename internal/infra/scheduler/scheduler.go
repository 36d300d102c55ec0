// Package scheduler runs the daily housekeeping jobs: season rollover
// and the evening digest. Jobs fire once per local day at a configured
// hour; a failed run is retried with backoff inside the same day.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job is one scheduled unit of work. Run receives the day the job is
// firing for and must be idempotent: a crash between run and record
// means it can fire twice.
type Job struct {
	Name string
	Hour int // local hour of day, 0-23
	Run  func(day time.Time) error
}

// Config controls retry behavior for failed runs.
type Config struct {
	Tick      time.Duration // how often due jobs are checked
	BaseDelay time.Duration // first retry delay, doubles per attempt
	MaxDelay  time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Tick:      time.Minute,
		BaseDelay: 30 * time.Second,
		MaxDelay:  30 * time.Minute,
	}
}

// Runner owns the job loop.
type Runner struct {
	cfg  Config
	jobs []Job
	log  *zap.Logger
	now  func() time.Time

	mu      sync.Mutex
	lastRun map[string]time.Time // job name -> day it last succeeded
	nextTry map[string]time.Time // job name -> earliest retry after failure
	backoff map[string]time.Duration
}

// NewRunner creates a runner for the given jobs.
func NewRunner(cfg Config, jobs []Job, log *zap.Logger) *Runner {
	if cfg.Tick <= 0 {
		cfg = DefaultConfig()
	}
	return &Runner{
		cfg:     cfg,
		jobs:    jobs,
		log:     log,
		now:     time.Now,
		lastRun: make(map[string]time.Time),
		nextTry: make(map[string]time.Time),
		backoff: make(map[string]time.Duration),
	}
}

// WithClock replaces the wall clock. Test hook.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Start blocks until ctx is canceled, firing due jobs on each tick.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Tick)
	defer ticker.Stop()

	r.RunDue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunDue()
		}
	}
}

// RunDue fires every job whose hour has passed today and which has not
// yet succeeded today. Exported so tests and one-shot CLI commands can
// drive the loop directly.
func (r *Runner) RunDue() {
	now := r.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, job := range r.jobs {
		if now.Hour() < job.Hour {
			continue
		}
		r.mu.Lock()
		done := r.lastRun[job.Name].Equal(day)
		waiting := now.Before(r.nextTry[job.Name])
		r.mu.Unlock()
		if done || waiting {
			continue
		}
		r.fire(job, day, now)
	}
}

func (r *Runner) fire(job Job, day, now time.Time) {
	runID := uuid.NewString()
	log := r.log.With(zap.String("job", job.Name), zap.String("run_id", runID))

	start := r.now()
	err := job.Run(day)
	elapsed := r.now().Sub(start)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		delay := r.backoff[job.Name]
		if delay == 0 {
			delay = r.cfg.BaseDelay
		} else if delay < r.cfg.MaxDelay {
			delay *= 2
			if delay > r.cfg.MaxDelay {
				delay = r.cfg.MaxDelay
			}
		}
		r.backoff[job.Name] = delay
		r.nextTry[job.Name] = now.Add(delay)
		log.Error("job failed", zap.Duration("elapsed", elapsed),
			zap.Duration("retry_in", delay), zap.Error(err))
		return
	}

	r.lastRun[job.Name] = day
	delete(r.nextTry, job.Name)
	delete(r.backoff, job.Name)
	log.Info("job complete", zap.Duration("elapsed", elapsed))
}
