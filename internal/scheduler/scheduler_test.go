package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeCleaner struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeCleaner) CleanupExpiredSessions(now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return 2, f.err
}

func (f *fakeCleaner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestAddSessionCleanup(t *testing.T) {
	tests := []struct {
		schedule string
		wantErr  bool
	}{
		{"@hourly", false},
		{"*/15 * * * *", false},
		{"@every 5m", false},
		{"every hour", true},
		{"* * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			s := New()
			err := s.AddSessionCleanup(tt.schedule, &fakeCleaner{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddSessionCleanup(%q) error = %v, wantErr %v", tt.schedule, err, tt.wantErr)
			}
			want := 1
			if tt.wantErr {
				want = 0
			}
			if s.Jobs() != want {
				t.Errorf("expected %d jobs, got %d", want, s.Jobs())
			}
		})
	}
}

func TestSessionCleanupJobUsesClock(t *testing.T) {
	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return fixed }

	c := &fakeCleaner{}
	s.sessionCleanupJob(c)()
	if c.count() != 1 || !c.calls[0].Equal(fixed) {
		t.Fatalf("expected one call at %v, got %v", fixed, c.calls)
	}

	// Errors are logged, not propagated.
	failing := &fakeCleaner{err: errors.New("db closed")}
	s.sessionCleanupJob(failing)()
	if failing.count() != 1 {
		t.Errorf("expected failing cleaner to be called once")
	}
}

func TestSchedulerRunsJob(t *testing.T) {
	s := New()
	c := &fakeCleaner{}
	if err := s.AddSessionCleanup("@every 1s", c); err != nil {
		t.Fatalf("AddSessionCleanup: %v", err)
	}
	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	deadline := time.Now().Add(3 * time.Second)
	for c.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("cleanup job never ran")
		}
		time.Sleep(50 * time.Millisecond)
	}
}
