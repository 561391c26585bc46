package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name  string
	runs  atomic.Int32
	err   error
	ctxOK atomic.Bool
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "fake " + j.name }
func (j *fakeJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	j.ctxOK.Store(ctx != nil)
	return j.err
}

func TestScheduler_Register(t *testing.T) {
	s := New(DefaultConfig())

	require.NoError(t, s.Register(&fakeJob{name: "a"}, "0 21 * * *"))
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, "0 21 * * *"), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "b"}, "not a cron"), ErrInvalidSchedule)
	assert.ErrorIs(t, s.Register(nil, "* * * * *"), ErrNilJob)

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "0 21 * * *", jobs[0].Schedule)

	require.NoError(t, s.Unregister("a"))
	assert.ErrorIs(t, s.Unregister("a"), ErrJobNotFound)
	assert.Empty(t, s.ListJobs())
}

func TestScheduler_RunNowRecordsHistory(t *testing.T) {
	s := New(DefaultConfig())
	ok := &fakeJob{name: "ok"}
	bad := &fakeJob{name: "bad", err: errors.New("boom")}
	require.NoError(t, s.Register(ok, "0 21 * * *"))
	require.NoError(t, s.Register(bad, "0 21 * * *"))

	var completed []string
	s.OnJobComplete(func(r JobResult) { completed = append(completed, r.JobName) })

	res, err := s.RunNow(context.Background(), "ok")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = s.RunNow(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.EqualError(t, res.Error, "boom")

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	assert.Equal(t, []string{"ok", "bad"}, completed)
	history := s.GetHistory(0)
	require.Len(t, history, 2)
	assert.Equal(t, "bad", history[1].JobName)
	assert.Len(t, s.GetHistory(1), 1)

	for _, info := range s.ListJobs() {
		assert.Equal(t, int64(1), info.RunCount)
		if info.Name == "bad" {
			assert.Equal(t, int64(1), info.FailCount)
		}
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(DefaultConfig())
	require.NoError(t, s.Register(&fakeJob{name: "a"}, "0 21 * * *"))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)
	assert.False(t, s.ListJobs()[0].NextRun.IsZero())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestNextAfter(t *testing.T) {
	loc := time.FixedZone("AST", 3*60*60)
	from := time.Date(2026, 10, 19, 20, 0, 0, 0, loc)

	next, err := NextAfter("0 21 * * *", from, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 19, 21, 0, 0, 0, loc), next)

	next, err = NextAfter("0 21 * * *", next, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 21, 0, 0, 0, loc), next)

	_, err = NextAfter("61 * * * *", from, loc)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}
