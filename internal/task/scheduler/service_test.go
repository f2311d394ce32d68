package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	logx "pagewatch/pkg/logx"
)

func TestRegisterRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop())
	if err := s.Register("bad", "not-a-schedule", func(context.Context) {}); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if err := s.Register("bad-cron", "cron:99 * * * *", func(context.Context) {}); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestStartRejectsUnknownTimezone(t *testing.T) {
	t.Parallel()
	s := New(Config{Timezone: "Nowhere/Atlantis"}, logx.Nop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestServiceRunsAndStops(t *testing.T) {
	t.Parallel()
	s := New(Config{Timezone: "UTC"}, logx.Nop())

	var runs atomic.Int32
	if err := s.Register("tick", "1s", func(ctx context.Context) { runs.Add(1) }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !s.Next("tick").IsZero() {
		t.Fatal("Next before Start should be zero")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Next("tick").IsZero() {
		t.Fatal("Next after Start should be set")
	}

	deadline := time.Now().Add(5 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if runs.Load() == 0 {
		t.Fatal("job never ran")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Stop(ctx)
	if !s.Next("tick").IsZero() {
		t.Fatal("Next after Stop should be zero")
	}
}

func TestRegisterReplacesRunningJob(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(context.Background())

	if err := s.Register("job", "1h", func(context.Context) {}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	first := s.Next("job")
	if err := s.Register("job", "2h", func(context.Context) {}); err != nil {
		t.Fatalf("re-Register: %v", err)
	}
	second := s.Next("job")
	if !second.After(first) {
		t.Fatalf("expected replaced schedule to fire later: first=%v second=%v", first, second)
	}
	if got := len(s.entries); got != 1 {
		t.Fatalf("entries = %d, want 1", got)
	}
}
