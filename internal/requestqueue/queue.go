package requestqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"filmtrack/internal/logging"
)

// ErrCleared is delivered to tasks dropped by Clear before they ran.
var ErrCleared = errors.New("request queue cleared")

// Task is one unit of outbound work.
type Task func(ctx context.Context) (any, error)

// Outcome carries a task's result to its submitter.
type Outcome struct {
	Value any
	Err   error
}

// Stats summarizes queue activity.
type Stats struct {
	Pending  int
	Running  bool
	Executed uint64
	Failed   uint64
	LastRun  time.Time
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the queue logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logging.NewComponentLogger(logger, "requestqueue")
	}
}

// WithClock replaces the wall clock used for spacing and stats.
func WithClock(clock Clock) Option {
	return func(q *Queue) {
		if clock != nil {
			q.clock = clock
		}
	}
}

type job struct {
	ctx  context.Context
	task Task
	done chan Outcome
}

// Queue runs tasks one at a time in submission order and waits at least the
// configured interval after each task finishes before starting the next.
// The worker goroutine starts on demand and exits once the queue drains.
type Queue struct {
	logger *slog.Logger
	clock  Clock

	mu       sync.Mutex
	interval time.Duration
	pending  []*job
	running  bool
	executed uint64
	failed   uint64
	lastRun  time.Time
}

// New constructs a Queue spacing tasks by interval.
func New(interval time.Duration, opts ...Option) *Queue {
	q := &Queue{
		logger:   logging.NewComponentLogger(nil, "requestqueue"),
		clock:    realClock{},
		interval: max(interval, 0),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends task and returns a channel that receives exactly one
// Outcome. The task runs with ctx's values but not its cancellation, so a
// caller that stops waiting does not abort work already queued.
func (q *Queue) Enqueue(ctx context.Context, task Task) <-chan Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan Outcome, 1)
	if task == nil {
		done <- Outcome{Err: errors.New("request queue: nil task")}
		return done
	}

	q.mu.Lock()
	q.pending = append(q.pending, &job{ctx: context.WithoutCancel(ctx), task: task, done: done})
	start := !q.running
	q.running = true
	depth := len(q.pending)
	q.mu.Unlock()

	if start {
		go q.run()
	}
	q.logger.Debug("task enqueued", logging.Int("queue_depth", depth))
	return done
}

// Do submits fn and waits for its result or for ctx to end. Abandoning the
// wait leaves the task queued.
func Do[T any](ctx context.Context, q *Queue, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}
	outcome := q.Enqueue(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	select {
	case out := <-outcome:
		if out.Err != nil {
			return zero, out.Err
		}
		value, _ := out.Value.(T)
		return value, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (q *Queue) run() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		out := q.execute(next)
		next.done <- out

		q.mu.Lock()
		interval := q.interval
		q.mu.Unlock()
		if interval > 0 {
			q.clock.Sleep(interval)
		}
	}
}

func (q *Queue) execute(j *job) (out Outcome) {
	started := q.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("request queue: task panicked: %v", r)}
		}
		q.mu.Lock()
		q.executed++
		if out.Err != nil {
			q.failed++
		}
		q.lastRun = started
		q.mu.Unlock()
		if out.Err != nil {
			q.logger.Debug("queued task failed",
				logging.Error(out.Err),
				logging.Duration("elapsed", q.clock.Now().Sub(started)))
		}
	}()
	value, err := j.task(j.ctx)
	return Outcome{Value: value, Err: err}
}

// SetInterval changes the spacing for tasks that have not started yet.
func (q *Queue) SetInterval(interval time.Duration) {
	q.mu.Lock()
	q.interval = max(interval, 0)
	q.mu.Unlock()
}

// Interval returns the current spacing.
func (q *Queue) Interval() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.interval
}

// Len returns the number of tasks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Clear drops every pending task. The running task, if any, completes.
func (q *Queue) Clear() int {
	q.mu.Lock()
	dropped := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, j := range dropped {
		j.done <- Outcome{Err: ErrCleared}
	}
	if len(dropped) > 0 {
		q.logger.Info("request queue cleared", logging.Int("dropped", len(dropped)))
	}
	return len(dropped)
}

// Stats returns a snapshot of queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Pending:  len(q.pending),
		Running:  q.running,
		Executed: q.executed,
		Failed:   q.failed,
		LastRun:  q.lastRun,
	}
}
