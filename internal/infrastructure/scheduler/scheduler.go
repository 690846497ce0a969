// Package scheduler runs the storefront's periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the outcome of a job's last run
type JobStatus string

const (
	JobStatusIdle    JobStatus = "IDLE"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Task is the work a job performs on each tick
type Task func(ctx context.Context) error

// Job is a task run on a fixed interval
type Job struct {
	Name       string
	Interval   time.Duration
	RunOnStart bool
	Task       Task
}

// JobState is a snapshot of a job's run history
type JobState struct {
	Name        string
	Interval    time.Duration
	Status      JobStatus
	Runs        int
	Failures    int
	LastError   string
	LastRunAt   *time.Time
	LastRunTook time.Duration
}

// RunObserver is notified after every run, e.g. to record metrics
type RunObserver func(job string, took time.Duration, err error)

// Config holds scheduler configuration
type Config struct {
	JobTimeout time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{JobTimeout: 2 * time.Minute}
}

type registeredJob struct {
	job   Job
	state JobState
	runMu sync.Mutex
}

// Scheduler runs registered jobs, each on its own ticker. Runs of the same
// job never overlap.
type Scheduler struct {
	config   Config
	logger   *zap.Logger
	observer RunObserver
	now      func() time.Time

	mu        sync.Mutex
	jobs      map[string]*registeredJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, logger *zap.Logger) *Scheduler {
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultConfig().JobTimeout
	}
	return &Scheduler{
		config: config,
		logger: logger.Named("scheduler"),
		now:    time.Now,
		jobs:   make(map[string]*registeredJob),
	}
}

// SetObserver installs a hook called after every job run
func (s *Scheduler) SetObserver(observer RunObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

// Register adds a job. Jobs must be registered before Start.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Task == nil || job.Interval <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidJob, job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}
	s.jobs[job.Name] = &registeredJob{
		job:   job,
		state: JobState{Name: job.Name, Interval: job.Interval, Status: JobStatusIdle},
	}
	return nil
}

// Start starts one loop per registered job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, rj := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, rj)
	}

	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels running jobs and waits for their loops to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler has been started
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunNow runs a job immediately and waits for it, sharing the job's
// no-overlap lock with the ticker loop
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	rj, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(ctx, rj)
}

// States returns a snapshot of every job, sorted by name
func (s *Scheduler) States() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	states := make([]JobState, 0, len(s.jobs))
	for _, rj := range s.jobs {
		states = append(states, rj.state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states
}

func (s *Scheduler) loop(ctx context.Context, rj *registeredJob) {
	defer s.wg.Done()

	if rj.job.RunOnStart {
		_ = s.run(ctx, rj)
	}

	ticker := time.NewTicker(rj.job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.run(ctx, rj)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, rj *registeredJob) (err error) {
	rj.runMu.Lock()
	defer rj.runMu.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	startedAt := s.now()
	s.setState(rj, func(st *JobState) { st.Status = JobStatusRunning })

	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", rj.job.Name, r)
		}
		took := s.now().Sub(startedAt)
		s.finish(rj, startedAt, took, err)
	}()

	return rj.job.Task(runCtx)
}

func (s *Scheduler) finish(rj *registeredJob, startedAt time.Time, took time.Duration, err error) {
	var observer RunObserver
	s.setState(rj, func(st *JobState) {
		st.Runs++
		st.LastRunAt = &startedAt
		st.LastRunTook = took
		if err != nil {
			st.Status = JobStatusFailed
			st.Failures++
			st.LastError = err.Error()
		} else {
			st.Status = JobStatusSuccess
			st.LastError = ""
		}
		observer = s.observer
	})

	if err != nil {
		s.logger.Error("Scheduled job failed",
			zap.String("job", rj.job.Name),
			zap.Duration("took", took),
			zap.Error(err))
	} else {
		s.logger.Debug("Scheduled job finished",
			zap.String("job", rj.job.Name),
			zap.Duration("took", took))
	}

	if observer != nil {
		observer(rj.job.Name, took, err)
	}
}

func (s *Scheduler) setState(rj *registeredJob, update func(*JobState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&rj.state)
}
