// Package scheduler runs periodic housekeeping jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionCleaner removes login sessions that expired before now.
type SessionCleaner interface {
	CleanupExpiredSessions(now time.Time) (int64, error)
}

// slogLogger adapts slog to cron.Logger.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron *cron.Cron
	now  func() time.Time
}

// New creates a stopped scheduler. Jobs never overlap with themselves and a
// panicking job is logged instead of crashing the process.
func New() *Scheduler {
	logger := slogLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		now: time.Now,
	}
}

// AddSessionCleanup schedules removal of expired sessions. schedule uses the
// standard five-field cron syntax or descriptors such as "@hourly".
func (s *Scheduler) AddSessionCleanup(schedule string, store SessionCleaner) error {
	_, err := s.cron.AddFunc(schedule, s.sessionCleanupJob(store))
	if err != nil {
		return err
	}
	slog.Info("scheduled session cleanup", "schedule", schedule)
	return nil
}

func (s *Scheduler) sessionCleanupJob(store SessionCleaner) func() {
	return func() {
		n, err := store.CleanupExpiredSessions(s.now())
		if err != nil {
			slog.Error("session cleanup failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("removed expired sessions", "count", n)
		}
	}
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out")
	}
}
