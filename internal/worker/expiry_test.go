package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func TestExpirySchedulerFires(t *testing.T) {
	s := NewExpiryScheduler(discardLogger())
	defer s.Stop()

	var fired int32
	s.Schedule(1, "d1", 5*time.Millisecond, func(ctx context.Context) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected bounded callback context")
		}
		atomic.AddInt32(&fired, 1)
	})

	waitFor(t, func() bool { return atomic.LoadInt32(&fired) == 1 })
	if s.Pending() != 0 {
		t.Fatalf("expected no armed timers, got %d", s.Pending())
	}
}

func TestExpirySchedulerCancel(t *testing.T) {
	s := NewExpiryScheduler(discardLogger())
	defer s.Stop()

	var fired int32
	s.Schedule(1, "d1", 20*time.Millisecond, func(context.Context) { atomic.AddInt32(&fired, 1) })
	s.Cancel(1, "other")
	if s.Pending() != 1 {
		t.Fatal("cancelling another draft must keep the timer")
	}
	s.Cancel(1, "d1")

	time.Sleep(40 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatal("cancelled timer fired")
	}
}

func TestExpirySchedulerReschedule(t *testing.T) {
	s := NewExpiryScheduler(discardLogger())
	defer s.Stop()

	var first, second int32
	s.Schedule(1, "d1", 10*time.Millisecond, func(context.Context) { atomic.AddInt32(&first, 1) })
	s.Schedule(1, "d1", 15*time.Millisecond, func(context.Context) { atomic.AddInt32(&second, 1) })

	waitFor(t, func() bool { return atomic.LoadInt32(&second) == 1 })
	if atomic.LoadInt32(&first) != 0 {
		t.Fatal("replaced timer fired")
	}
}

func TestExpirySchedulerStop(t *testing.T) {
	s := NewExpiryScheduler(discardLogger())

	var fired int32
	for i := int64(1); i <= 3; i++ {
		s.Schedule(i, "d", 30*time.Millisecond, func(context.Context) { atomic.AddInt32(&fired, 1) })
	}
	s.Stop()

	s.Schedule(9, "late", time.Millisecond, func(context.Context) { atomic.AddInt32(&fired, 1) })
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("expected no callbacks after stop, got %d", fired)
	}
}

func TestExpirySchedulerStopWaitsForRunningCallback(t *testing.T) {
	s := NewExpiryScheduler(discardLogger())

	started := make(chan struct{})
	var done int32
	s.Schedule(1, "d1", time.Millisecond, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		atomic.StoreInt32(&done, 1)
	})

	<-started
	s.Stop()
	if atomic.LoadInt32(&done) != 1 {
		t.Fatal("stop returned before callback finished")
	}
}
