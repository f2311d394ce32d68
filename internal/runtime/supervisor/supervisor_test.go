package supervisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGoRecordsFirstErrorAndRecoversPanics(t *testing.T) {
	s := New(context.Background())
	boom := errors.New("boom")

	s.Go("fails", func(context.Context) error { return boom })
	if err := s.Wait(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Wait() = %v, want %v", err, boom)
	}

	s.Go("panics", func(context.Context) error { panic("oops") })
	_ = s.Wait(context.Background())
	if err := s.Err(); !errors.Is(err, boom) {
		t.Fatalf("first error should be kept, got %v", err)
	}
	if s.Active() != 0 {
		t.Fatalf("Active() = %d, want 0", s.Active())
	}
}

func TestPanicIsReported(t *testing.T) {
	s := New(context.Background())
	s.Go("panics", func(context.Context) error { panic("oops") })
	err := s.Wait(context.Background())
	if err == nil || !strings.Contains(err.Error(), "panic in panics") {
		t.Fatalf("Wait() = %v", err)
	}
}

func TestCancelOnError(t *testing.T) {
	s := New(context.Background(), WithCancelOnError(true))
	s.Go("long", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	s.Go("fails", func(context.Context) error { return errors.New("bad") })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Wait(ctx); err == nil || !strings.Contains(err.Error(), "fails: bad") {
		t.Fatalf("Wait() = %v", err)
	}
}

func TestStopCancelsGoroutines(t *testing.T) {
	s := New(context.Background())
	s.Go("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	s := New(context.Background())
	release := make(chan struct{})
	s.Go("stuck", func(context.Context) error {
		<-release
		return nil
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() = %v, want deadline exceeded", err)
	}
}
