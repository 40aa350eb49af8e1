package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughcrm/internal/crm/crmtest"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/pkg/common"
)

type countingJob struct {
	name  string
	runs  int32
	err   error
	panic bool
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) (string, error) {
	atomic.AddInt32(&j.runs, 1)
	if j.panic {
		panic("boom")
	}
	if j.err != nil {
		return "", j.err
	}
	return "done", nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *GormJobStore) {
	t.Helper()
	store := NewGormJobStore(crmtest.NewDB(t))
	s, err := NewScheduler(time.UTC, 2, store)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s, store
}

func findJob(t *testing.T, store *GormJobStore, name string) domain.CrmJob {
	t.Helper()
	jobs, err := store.List(context.Background())
	require.NoError(t, err)
	for _, j := range jobs {
		if j.Name == name {
			return j
		}
	}
	t.Fatalf("job %s not stored", name)
	return domain.CrmJob{}
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule(""))
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.NoError(t, ValidateSchedule("0 6 * * 1"))
	assert.NoError(t, ValidateSchedule("@every 30s"))
	assert.NoError(t, ValidateSchedule("0 0 */12 * * *"))
	assert.Error(t, ValidateSchedule("every tuesday"))
}

func TestSchedulerRegister(t *testing.T) {
	s, _ := newTestScheduler(t)
	require.NoError(t, s.Register(&countingJob{name: "b"}, "*/5 * * * *", ""))
	require.NoError(t, s.Register(&countingJob{name: "a"}, "", ""))
	assert.Error(t, s.Register(&countingJob{name: "a"}, "", ""))
	assert.Error(t, s.Register(&countingJob{name: "c"}, "bogus", ""))
	assert.Equal(t, []string{"a", "b"}, s.Names())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
}

func TestSchedulerRunRecordsState(t *testing.T) {
	s, store := newTestScheduler(t)
	ok := &countingJob{name: "ok"}
	bad := &countingJob{name: "bad", err: errors.New("upstream down")}
	crash := &countingJob{name: "crash", panic: true}
	require.NoError(t, s.Register(ok, "0 6 * * 1", "weekly"))
	require.NoError(t, s.Register(bad, "", ""))
	require.NoError(t, s.Register(crash, "", ""))
	require.NoError(t, s.Start(context.Background()))

	assert.False(t, s.NextRun("ok").IsZero())
	assert.True(t, s.NextRun("bad").IsZero())

	msg, err := s.Run(context.Background(), "ok")
	require.NoError(t, err)
	assert.Equal(t, "done", msg)
	stored := findJob(t, store, "ok")
	assert.Equal(t, common.SUCCESS, stored.LastResult)
	assert.Equal(t, "done", stored.LastMessage)
	assert.Equal(t, "0 6 * * 1", stored.Schedule)
	assert.Equal(t, "weekly", stored.Remark)
	assert.False(t, stored.LastRunAt.IsZero())

	_, err = s.Run(context.Background(), "bad")
	assert.Error(t, err)
	stored = findJob(t, store, "bad")
	assert.Equal(t, common.FAILED, stored.LastResult)
	assert.Equal(t, "upstream down", stored.LastMessage)

	_, err = s.Run(context.Background(), "crash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.Equal(t, common.FAILED, findJob(t, store, "crash").LastResult)

	_, err = s.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestSchedulerRunNow(t *testing.T) {
	s, store := newTestScheduler(t)
	job := &countingJob{name: "async"}
	require.NoError(t, s.Register(job, "", ""))
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.RunNow("async"))
	assert.Error(t, s.RunNow("missing"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.EqualValues(t, 1, atomic.LoadInt32(&job.runs))
	assert.Equal(t, common.SUCCESS, findJob(t, store, "async").LastResult)
}

type blockingJob struct {
	started chan struct{}
	release chan struct{}
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(context.Context) (string, error) {
	close(j.started)
	<-j.release
	return "done", nil
}

func TestSchedulerRejectsTriggersAfterStop(t *testing.T) {
	s, _ := newTestScheduler(t)
	job := &countingJob{name: "late"}
	require.NoError(t, s.Register(job, "", ""))
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	assert.True(t, errors.Is(s.RunNow("late"), ErrStopped))
	_, err := s.Run(context.Background(), "late")
	assert.True(t, errors.Is(err, ErrStopped))
	assert.True(t, errors.Is(s.RunNow("missing"), ErrUnknownJob))
	assert.EqualValues(t, 0, atomic.LoadInt32(&job.runs))
	assert.NoError(t, s.Stop(ctx))
}

func TestSchedulerStopTimeoutReleasesPool(t *testing.T) {
	s, _ := newTestScheduler(t)
	job := &blockingJob{started: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, s.Register(job, "", ""))
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.RunNow("blocking"))
	<-job.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.Stop(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, s.pool.IsClosed())
	assert.True(t, errors.Is(s.RunNow("blocking"), ErrStopped))

	close(job.release)
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, s.Stop(waitCtx))
}

func TestSchedulerSkipsDisabledJobs(t *testing.T) {
	s, store := newTestScheduler(t)
	require.NoError(t, s.Register(&countingJob{name: "restock"}, "@every 1h", ""))

	_, err := store.Ensure(context.Background(), "restock", "@every 1h", "")
	require.NoError(t, err)
	require.NoError(t, store.db.Model(&domain.CrmJob{}).Where("name = ?", "restock").
		Update("status", common.DISABLED).Error)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.NextRun("restock").IsZero())
	// Ensure keeps the operator's status
	assert.Equal(t, common.DISABLED, findJob(t, store, "restock").Status)
}
