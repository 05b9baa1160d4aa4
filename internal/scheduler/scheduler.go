// Package scheduler runs the service's recurring background jobs. Jobs are
// owned by the Scheduler instance and started and stopped through explicit
// lifecycle calls; there is no process-global job registry.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named recurring task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// JobStatus is a snapshot of one job's state.
type JobStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Running   bool          `json:"running"`
	Runs      int           `json:"runs"`
	LastRun   *time.Time    `json:"last_run,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

type jobState struct {
	job     Job
	runs    int
	lastRun *time.Time
	lastErr error
}

// Scheduler owns a collection of jobs and a goroutine per job once started.
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	jobs    []*jobState
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Register adds a job. Registration after Start has no effect on the running
// set until the scheduler is restarted.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &jobState{job: job})
}

// Start launches one ticker goroutine per registered job. Every job runs once
// immediately, then on its interval. The given context bounds all job runs.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, state := range s.jobs {
		s.wg.Add(1)
		go s.runJob(runCtx, state)
		s.logger.Info("Scheduled job",
			zap.String("job", state.job.Name),
			zap.Duration("interval", state.job.Interval))
	}
}

// Stop halts all jobs and waits for in-flight runs to finish. Cancelling the
// run context lets a cooperative job stop starting new work.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// Status reports a snapshot of every registered job.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, state := range s.jobs {
		status := JobStatus{
			Name:     state.job.Name,
			Interval: state.job.Interval,
			Running:  s.started,
			Runs:     state.runs,
			LastRun:  state.lastRun,
		}
		if state.lastErr != nil {
			status.LastError = state.lastErr.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func (s *Scheduler) runJob(ctx context.Context, state *jobState) {
	defer s.wg.Done()

	ticker := time.NewTicker(state.job.Interval)
	defer ticker.Stop()

	// Run once at start, like the rest of the schedule.
	s.executeJob(ctx, state)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.executeJob(ctx, state)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, state *jobState) {
	if ctx.Err() != nil {
		return
	}

	s.logger.Debug("Running job", zap.String("job", state.job.Name))
	err := state.job.Run(ctx)

	now := time.Now()
	s.mu.Lock()
	state.runs++
	state.lastRun = &now
	state.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Job run failed",
			zap.String("job", state.job.Name),
			zap.Error(err))
	}
}
