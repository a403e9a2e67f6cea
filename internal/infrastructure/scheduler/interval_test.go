package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	fired := make(chan struct{}, 10)

	s := NewIntervalScheduler(10 * time.Millisecond)
	err := s.Start(context.Background(), func(time.Time) {
		runs.Add(1)
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("job fired %d times, expected at least 3", runs.Load())
		}
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	if runs.Load() != after {
		t.Fatalf("job kept running after Stop")
	}
}

func TestIntervalSchedulerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewIntervalScheduler(time.Hour)

	started := make(chan struct{})
	if err := s.Start(ctx, func(time.Time) { close(started) }); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	<-started
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}

func TestIntervalSchedulerRejectsZeroInterval(t *testing.T) {
	t.Parallel()

	if err := NewIntervalScheduler(0).Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if err := NewIntervalScheduler(0).Stop(context.Background()); err != nil {
		t.Fatalf("Stop on idle scheduler should be a no-op: %v", err)
	}
}
