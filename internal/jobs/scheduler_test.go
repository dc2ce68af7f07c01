package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	calls atomic.Int32
	err   error
}

func (f *fakeGenerator) GenerateForAll(time.Time) (int, error) {
	f.calls.Add(1)
	return 4, f.err
}

type fakeDispatcher struct {
	calls atomic.Int32
}

func (f *fakeDispatcher) DispatchDue(time.Time) (int, error) {
	f.calls.Add(1)
	return 1, nil
}

func TestScheduleAndRunNow(t *testing.T) {
	s := NewScheduler(time.UTC, nil)
	gen := &fakeGenerator{}
	reminders := &fakeDispatcher{}

	require.NoError(t, s.AddDailyTasks("5 0 * * *", gen))
	require.NoError(t, s.AddReminderScan("@every 1m", reminders))

	assert.True(t, s.RunNow("daily-tasks"))
	assert.True(t, s.RunNow("reminders"))
	assert.False(t, s.RunNow("unknown"))

	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, int32(1), reminders.calls.Load())
}

func TestFailingJobDoesNotPanic(t *testing.T) {
	s := NewScheduler(time.UTC, nil)
	gen := &fakeGenerator{err: errors.New("database is locked")}
	require.NoError(t, s.AddDailyTasks("@daily", gen))

	assert.NotPanics(t, func() { s.RunNow("daily-tasks") })
}

func TestInvalidSpec(t *testing.T) {
	s := NewScheduler(time.UTC, nil)
	err := s.AddDailyTasks("every morning", &fakeGenerator{})
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestRescheduleReplacesEntry(t *testing.T) {
	s := NewScheduler(time.UTC, nil)
	gen := &fakeGenerator{}
	require.NoError(t, s.AddDailyTasks("@daily", gen))
	require.NoError(t, s.AddDailyTasks("@hourly", gen))

	assert.Len(t, s.cron.Entries(), 1)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(time.UTC, nil)
	reminders := &fakeDispatcher{}
	require.NoError(t, s.AddReminderScan("@every 1s", reminders))

	s.Start()
	_, ok := s.Next("reminders")
	assert.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
