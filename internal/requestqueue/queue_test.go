package requestqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type span struct {
	id         int
	start, end time.Time
}

func TestQueueRunsInOrderWithSpacing(t *testing.T) {
	const interval = 15 * time.Millisecond
	q := New(interval)

	var (
		mu    sync.Mutex
		spans []span
	)
	var outcomes []<-chan Outcome
	for i := 0; i < 5; i++ {
		id := i
		outcomes = append(outcomes, q.Enqueue(context.Background(), func(context.Context) (any, error) {
			start := time.Now()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			spans = append(spans, span{id: id, start: start, end: time.Now()})
			mu.Unlock()
			return id, nil
		}))
	}
	for i, ch := range outcomes {
		out := <-ch
		if out.Err != nil {
			t.Fatalf("task %d failed: %v", i, out.Err)
		}
		if out.Value.(int) != i {
			t.Fatalf("task %d returned %v", i, out.Value)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, s := range spans {
		if s.id != i {
			t.Fatalf("expected FIFO order, position %d ran task %d", i, s.id)
		}
		if i == 0 {
			continue
		}
		if gap := s.start.Sub(spans[i-1].end); gap < interval {
			t.Fatalf("gap between task %d and %d was %v, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestQueueIsolatesFailures(t *testing.T) {
	q := New(0)
	boom := errors.New("boom")

	first := q.Enqueue(context.Background(), func(context.Context) (any, error) { return nil, boom })
	second := q.Enqueue(context.Background(), func(context.Context) (any, error) { panic("kaboom") })
	third := q.Enqueue(context.Background(), func(context.Context) (any, error) { return "ok", nil })

	if out := <-first; !errors.Is(out.Err, boom) {
		t.Fatalf("expected boom, got %v", out.Err)
	}
	if out := <-second; out.Err == nil {
		t.Fatal("expected panic to surface as error")
	}
	if out := <-third; out.Err != nil || out.Value != "ok" {
		t.Fatalf("expected third task to succeed, got %+v", out)
	}

	stats := q.Stats()
	if stats.Executed != 3 || stats.Failed != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestQueueRestartsAfterIdle(t *testing.T) {
	q := New(time.Millisecond)
	if _, err := Do(context.Background(), q, func(context.Context) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("first Do: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for q.Stats().Running {
		if time.Now().After(deadline) {
			t.Fatal("worker did not go idle")
		}
		time.Sleep(time.Millisecond)
	}

	got, err := Do(context.Background(), q, func(context.Context) (string, error) { return "again", nil })
	if err != nil {
		t.Fatalf("second Do: %v", err)
	}
	if got != "again" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestDoAbandonDoesNotCancelTask(t *testing.T) {
	q := New(0)
	release := make(chan struct{})
	finished := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := Do(ctx, q, func(taskCtx context.Context) (bool, error) {
			<-release
			finished <- taskCtx.Err()
			return true, nil
		})
		errCh <- err
	}()

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected caller to observe cancellation, got %v", err)
	}
	close(release)
	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("task context should not be cancelled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("abandoned task never ran")
	}
}

func TestClearDropsPendingTasks(t *testing.T) {
	q := New(0)
	release := make(chan struct{})
	started := make(chan struct{})

	running := q.Enqueue(context.Background(), func(context.Context) (any, error) {
		close(started)
		<-release
		return "done", nil
	})
	<-started
	pendingA := q.Enqueue(context.Background(), func(context.Context) (any, error) { return "a", nil })
	pendingB := q.Enqueue(context.Background(), func(context.Context) (any, error) { return "b", nil })

	if q.Len() != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", q.Len())
	}
	if dropped := q.Clear(); dropped != 2 {
		t.Fatalf("expected 2 dropped tasks, got %d", dropped)
	}
	close(release)

	if out := <-running; out.Err != nil {
		t.Fatalf("running task should complete, got %v", out.Err)
	}
	for _, ch := range []<-chan Outcome{pendingA, pendingB} {
		if out := <-ch; !errors.Is(out.Err, ErrCleared) {
			t.Fatalf("expected ErrCleared, got %+v", out)
		}
	}
}

func TestSetIntervalClampsNegative(t *testing.T) {
	q := New(-time.Second)
	if q.Interval() != 0 {
		t.Fatalf("expected negative interval clamped to 0, got %v", q.Interval())
	}
	q.SetInterval(250 * time.Millisecond)
	if q.Interval() != 250*time.Millisecond {
		t.Fatalf("unexpected interval %v", q.Interval())
	}
}

type recordingClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *recordingClock) Now() time.Time { return time.Now() }

func (c *recordingClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
}

func TestQueueSleepsAfterEveryTask(t *testing.T) {
	clock := &recordingClock{}
	q := New(200*time.Millisecond, WithClock(clock))
	for i := 0; i < 3; i++ {
		if _, err := Do(context.Background(), q, func(context.Context) (int, error) { return i, nil }); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	deadline := time.Now().Add(time.Second)
	for {
		clock.mu.Lock()
		n := len(clock.sleeps)
		clock.mu.Unlock()
		if n == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 3 sleeps, got %d", n)
		}
		time.Sleep(time.Millisecond)
	}
	clock.mu.Lock()
	defer clock.mu.Unlock()
	for _, d := range clock.sleeps {
		if d != 200*time.Millisecond {
			t.Fatalf("unexpected sleep %v", d)
		}
	}
}
