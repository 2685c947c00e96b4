package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultWindow is how long a Scheduler waits for more work before running.
const DefaultWindow = 50 * time.Millisecond

var ErrSchedulerClosed = errors.New("scheduler closed")

type job struct {
	ctx  context.Context
	op   func(ctx context.Context) error
	done chan error
}

func (j *job) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in scheduled operation: %v", r)
		}
	}()
	if err := j.ctx.Err(); err != nil {
		return err
	}
	return j.op(j.ctx)
}

// Scheduler coalesces operations submitted close together. Every Do restarts
// the window; when the window elapses without new work, all queued
// operations run concurrently. The zero value is not usable; call
// NewScheduler.
type Scheduler struct {
	window time.Duration

	mu      sync.Mutex
	pending []*job
	timer   *time.Timer
	closed  bool
	running sync.WaitGroup
}

func NewScheduler(window time.Duration) *Scheduler {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Scheduler{window: window}
}

// Do queues op and waits for it to run. It returns op's error, ctx's error
// if ctx ends first, or ErrSchedulerClosed after Close.
func (s *Scheduler) Do(ctx context.Context, op func(ctx context.Context) error) error {
	j := &job{ctx: ctx, op: op, done: make(chan error, 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSchedulerClosed
	}
	s.pending = append(s.pending, j)
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.window, s.Flush)
	s.mu.Unlock()

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports how many operations are waiting for the window.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush runs every queued operation now and waits for them.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	jobs := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if len(jobs) == 0 {
		s.mu.Unlock()
		return
	}
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()

	var g errgroup.Group
	for _, j := range jobs {
		g.Go(func() error {
			j.done <- j.run()
			return nil
		})
	}
	_ = g.Wait()
}

// Close runs what is queued, waits for running operations and rejects any
// further Do.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.Flush()
	s.running.Wait()
}
