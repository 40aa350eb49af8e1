package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/talkincode/toughcrm/pkg/common"
	"github.com/talkincode/toughcrm/pkg/metrics"
)

// Job is a named unit of scheduled work. Run returns a short outcome message.
type Job interface {
	Name() string
	Run(ctx context.Context) (string, error)
}

// ErrUnknownJob is returned when a job name is not registered
var ErrUnknownJob = errors.New("unknown job")

// ErrStopped is returned when a job is triggered after Stop
var ErrStopped = errors.New("scheduler stopped")

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSchedule checks a cron spec. Empty means run on demand only.
func ValidateSchedule(spec string) error {
	if spec == "" {
		return nil
	}
	_, err := cronParser.Parse(spec)
	return errors.Wrapf(err, "invalid schedule %q", spec)
}

type entry struct {
	job      Job
	schedule string
	remark   string
	cronID   cron.EntryID
}

// Scheduler triggers registered jobs with cron and executes them on a bounded worker pool.
type Scheduler struct {
	cron    *cron.Cron
	pool    *ants.Pool
	store   JobStore
	timeout time.Duration

	mu      sync.RWMutex
	jobs     map[string]*entry
	started  bool
	stopping bool
	running  sync.WaitGroup
}

// NewScheduler creates a stopped scheduler. store may be nil, then run outcomes are only logged.
func NewScheduler(loc *time.Location, workers int, store JobStore) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		zap.S().Errorf("job worker panic: %v", p)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create job pool")
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		pool:    pool,
		store:   store,
		timeout: 10 * time.Minute,
		jobs:    make(map[string]*entry),
	}, nil
}

// Register adds a job. It must be called before Start.
func (s *Scheduler) Register(job Job, schedule, remark string) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.Errorf("register %s: scheduler already started", job.Name())
	}
	if _, ok := s.jobs[job.Name()]; ok {
		return errors.Errorf("job %s already registered", job.Name())
	}
	s.jobs[job.Name()] = &entry{job: job, schedule: schedule, remark: remark}
	return nil
}

// Names returns the registered job names in order
func (s *Scheduler) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a job is registered
func (s *Scheduler) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.jobs[name]
	return ok
}

// Sync stores every registered job and reports which ones are disabled.
func (s *Scheduler) Sync(ctx context.Context) (map[string]bool, error) {
	disabled := make(map[string]bool)
	if s.store == nil {
		return disabled, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for name, e := range s.jobs {
		stored, err := s.store.Ensure(ctx, name, e.schedule, e.remark)
		if err != nil {
			return nil, err
		}
		disabled[name] = stored.Status == common.DISABLED
	}
	return disabled, nil
}

// Start stores the registry and schedules every enabled job with a schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	disabled, err := s.Sync(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	for name, e := range s.jobs {
		if e.schedule == "" || disabled[name] {
			zap.L().Info("job not scheduled", zap.String("job", name), zap.String("namespace", "jobs"))
			continue
		}
		name := name
		id, err := s.cron.AddFunc(e.schedule, func() {
			if err := s.RunNow(name); err != nil {
				zap.S().Errorf("trigger job %s error %s", name, err.Error())
			}
		})
		if err != nil {
			return errors.Wrapf(err, "schedule job %s", name)
		}
		e.cronID = id
		zap.L().Info("job scheduled",
			zap.String("job", name),
			zap.String("schedule", e.schedule),
			zap.String("namespace", "jobs"))
	}
	s.cron.Start()
	s.started = true
	return nil
}

// NextRun returns the next trigger time of a scheduled job, zero when it is not scheduled.
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.jobs[name]
	if !ok || e.cronID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(e.cronID).Next
}

// Stop halts the triggers and waits for running jobs until ctx is done.
// The worker pool is released either way and later triggers fail with ErrStopped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	defer s.pool.Release()

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait running jobs")
	}
	return nil
}

// RunNow submits a job to the worker pool without waiting for it.
func (s *Scheduler) RunNow(name string) error {
	e, err := s.acquire(name)
	if err != nil {
		return err
	}
	err = s.pool.Submit(func() {
		defer s.running.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, _ = s.execute(ctx, e.job)
	})
	if err != nil {
		s.running.Done()
		return errors.Wrapf(err, "submit job %s", name)
	}
	return nil
}

// Run executes a job synchronously and returns its outcome message.
func (s *Scheduler) Run(ctx context.Context, name string) (string, error) {
	e, err := s.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.running.Done()
	return s.execute(ctx, e.job)
}

// acquire looks up a job and counts it as running. The caller must call running.Done.
func (s *Scheduler) acquire(name string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownJob, name)
	}
	if s.stopping {
		return nil, errors.Wrap(ErrStopped, name)
	}
	s.running.Add(1)
	return e, nil
}

func (s *Scheduler) execute(ctx context.Context, job Job) (msg string, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			zap.S().Error(r)
			err = errors.Errorf("job %s panic: %v", job.Name(), r)
		}
		s.finish(job.Name(), start, msg, err)
	}()
	return job.Run(ctx)
}

func (s *Scheduler) finish(name string, start time.Time, msg string, err error) {
	metrics.Inc(metrics.CrmJobRuns)
	result := common.SUCCESS
	if err != nil {
		metrics.Inc(metrics.CrmJobFailures)
		result = common.FAILED
		msg = err.Error()
		zap.L().Error("job failed",
			zap.String("job", name),
			zap.Error(err),
			zap.String("namespace", "jobs"))
	} else {
		zap.L().Info("job done",
			zap.String("job", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("namespace", "jobs"))
	}
	if s.store == nil {
		return
	}
	// The run context may already be expired here
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if rerr := s.store.RecordRun(ctx, name, start, result, msg); rerr != nil {
		zap.S().Errorf("record job %s run error %s", name, rerr.Error())
	}
}
