// Package jobs runs the periodic work of the service: generating each baby's
// daily tasks and scanning for due reminders.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TaskGenerator creates the day's tasks for every baby
type TaskGenerator interface {
	GenerateForAll(today time.Time) (int, error)
}

// ReminderDispatcher fires reminders that are due
type ReminderDispatcher interface {
	DispatchDue(now time.Time) (int, error)
}

// Scheduler wraps a cron runner with the service's jobs
type Scheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
	logger  *zap.Logger
	now     func() time.Time
}

// NewScheduler creates a scheduler evaluating specs in loc
func NewScheduler(loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		entries: make(map[string]cron.EntryID),
		logger:  logger,
		now:     func() time.Time { return time.Now().In(loc) },
	}
}

// AddDailyTasks schedules daily task generation
func (s *Scheduler) AddDailyTasks(spec string, gen TaskGenerator) error {
	return s.add("daily-tasks", spec, func() {
		n, err := gen.GenerateForAll(s.now())
		if err != nil {
			s.logger.Error("daily task generation failed", zap.Error(err))
			return
		}
		s.logger.Info("daily tasks generated", zap.Int("created", n))
	})
}

// AddReminderScan schedules the due-reminder scan
func (s *Scheduler) AddReminderScan(spec string, dispatcher ReminderDispatcher) error {
	return s.add("reminders", spec, func() {
		n, err := dispatcher.DispatchDue(s.now())
		if err != nil {
			s.logger.Error("reminder scan failed", zap.Error(err))
			return
		}
		if n > 0 {
			s.logger.Info("reminders dispatched", zap.Int("count", n))
		}
	})
}

func (s *Scheduler) add(name, spec string, run func()) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
	}
	s.entries[name] = s.cron.Schedule(schedule, cron.FuncJob(run))
	s.logger.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

// Next returns the next run time of a named job
func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// RunNow runs a named job synchronously
func (s *Scheduler) RunNow(name string) bool {
	id, ok := s.entries[name]
	if !ok {
		return false
	}
	s.cron.Entry(id).WrappedJob.Run()
	return true
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
