// Package scheduler runs background jobs on cron expressions. The tracker uses
// it for one job: sending the daily report in the evening.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/badr-center/halaqa-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job defines the interface that all scheduled jobs must implement.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job.
	// The context is cancelled when the scheduler is stopping.
	Run(ctx context.Context) error

	Description() string
}

// JobResult contains the result of a job execution.
type JobResult struct {
	JobName     string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Success     bool
	Error       error
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the Scheduler.
type Config struct {
	Logger *logger.Logger

	// Location for schedule calculations (default: UTC).
	Location *time.Location

	// MaxHistorySize is the maximum number of job results to keep.
	MaxHistorySize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Logger:         logger.Nop(),
		Location:       time.UTC,
		MaxHistorySize: 100,
	}
}

// Scheduler manages and executes scheduled jobs.
type Scheduler struct {
	mu sync.RWMutex

	cron       *cron.Cron
	log        *logger.Logger
	location   *time.Location
	maxHistory int

	jobs    map[string]*scheduledJob
	running bool
	ctx     context.Context
	cancel  context.CancelFunc

	history []JobResult

	onJobComplete func(result JobResult)
}

type scheduledJob struct {
	job       Job
	spec      string
	entryID   cron.EntryID
	lastRun   time.Time
	runCount  int64
	failCount int64
}

// New creates a Scheduler.
func New(config Config) *Scheduler {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.MaxHistorySize <= 0 {
		config.MaxHistorySize = 100
	}

	log := config.Logger.With(logger.Component("scheduler"))
	cl := cronLogger{log: log}

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(config.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:        log,
		location:   config.Location,
		maxHistory: config.MaxHistorySize,
		jobs:       make(map[string]*scheduledJob),
		ctx:        context.Background(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// JOB REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

// Register adds a job with a standard five-field cron expression.
func (s *Scheduler) Register(job Job, spec string) error {
	if job == nil {
		return ErrNilJob
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyExists, name)
	}

	sj := &scheduledJob{job: job, spec: spec}
	id, err := s.cron.AddFunc(spec, func() {
		s.mu.RLock()
		ctx := s.ctx
		s.mu.RUnlock()
		s.runJob(ctx, sj)
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, spec, err)
	}
	sj.entryID = id
	s.jobs[name] = sj

	s.log.Info("job registered",
		logger.String("job", name),
		logger.String("description", job.Description()),
		logger.String("schedule", spec),
	)
	return nil
}

// Unregister removes a job from the scheduler.
func (s *Scheduler) Unregister(jobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sj, exists := s.jobs[jobName]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}
	s.cron.Remove(sj.entryID)
	delete(s.jobs, jobName)
	s.log.Info("job unregistered", logger.String("job", jobName))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start begins running jobs. ctx is passed to every run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerAlreadyRunning
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.cron.Start()

	s.log.Info("scheduler started", logger.Int("jobs", len(s.jobs)))
	return nil
}

// Stop halts scheduling and waits for running jobs to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.cron.Stop().Done()

	s.log.Info("scheduler stopped")
	return nil
}

// IsRunning reports whether Start has been called without Stop.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ══════════════════════════════════════════════════════════════════════════════
// EXECUTION
// ══════════════════════════════════════════════════════════════════════════════

func (s *Scheduler) runJob(ctx context.Context, sj *scheduledJob) JobResult {
	name := sj.job.Name()
	start := time.Now()
	s.log.Debug("job started", logger.String("job", name))

	err := sj.job.Run(ctx)

	end := time.Now()
	result := JobResult{
		JobName:     name,
		StartedAt:   start,
		CompletedAt: end,
		Duration:    end.Sub(start),
		Success:     err == nil,
		Error:       err,
	}

	s.mu.Lock()
	sj.lastRun = start
	sj.runCount++
	if err != nil {
		sj.failCount++
	}
	s.history = append(s.history, result)
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
	hook := s.onJobComplete
	s.mu.Unlock()

	if err != nil {
		s.log.Error("job failed", logger.String("job", name), logger.Err(err), logger.Latency(result.Duration))
	} else {
		s.log.Info("job completed", logger.String("job", name), logger.Latency(result.Duration))
	}
	if hook != nil {
		hook(result)
	}
	return result
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, jobName string) (*JobResult, error) {
	s.mu.RLock()
	sj, exists := s.jobs[jobName]
	s.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}
	result := s.runJob(ctx, sj)
	return &result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INTROSPECTION
// ══════════════════════════════════════════════════════════════════════════════

// JobInfo describes a registered job.
type JobInfo struct {
	Name        string
	Description string
	Schedule    string
	NextRun     time.Time
	LastRun     time.Time
	RunCount    int64
	FailCount   int64
}

// ListJobs returns registered jobs sorted by name. NextRun is zero until the
// scheduler is started.
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, sj := range s.jobs {
		infos = append(infos, JobInfo{
			Name:        name,
			Description: sj.job.Description(),
			Schedule:    sj.spec,
			NextRun:     s.cron.Entry(sj.entryID).Next,
			LastRun:     sj.lastRun,
			RunCount:    sj.runCount,
			FailCount:   sj.failCount,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// GetHistory returns up to limit recent results, newest last.
func (s *Scheduler) GetHistory(limit int) []JobResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]JobResult, limit)
	copy(out, s.history[len(s.history)-limit:])
	return out
}

// OnJobComplete sets a callback invoked after every run.
func (s *Scheduler) OnJobComplete(fn func(result JobResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onJobComplete = fn
}

// NextAfter returns the next activation of spec after t in loc.
func NextAfter(spec string, t time.Time, loc *time.Location) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, spec, err)
	}
	return sched.Next(t.In(loc)), nil
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug(msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error(msg, append(kvFields(keysAndValues), logger.Err(err))...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNilJob is returned when trying to register a nil job.
	ErrNilJob = errors.New("job cannot be nil")

	// ErrInvalidSchedule is returned for an unparsable cron expression.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrJobAlreadyExists is returned when a job with the same name already exists.
	ErrJobAlreadyExists = errors.New("job already exists")

	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = errors.New("job not found")

	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")
	ErrSchedulerNotRunning     = errors.New("scheduler is not running")
)
