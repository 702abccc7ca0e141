package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Scheduler runs message handlers as background tasks with bounded concurrency.
// Tasks run on a context detached from the publisher's cancellation, so a
// finished request never aborts the work it triggered.
type Scheduler struct {
	logger  *slog.Logger
	metrics *Metrics
	slots   *semaphore.Weighted

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type SchedulerOption func(*Scheduler)

// WithMetrics records handler durations for every task.
func WithMetrics(metrics *Metrics) SchedulerOption {
	return func(s *Scheduler) {
		s.metrics = metrics
	}
}

// NewScheduler creates a scheduler running at most workers tasks at once.
func NewScheduler(workers int, logger *slog.Logger, opts ...SchedulerOption) *Scheduler {
	if workers <= 0 {
		workers = 1
	}

	s := &Scheduler{
		logger: logger.With("component", "scheduler"),
		slots:  semaphore.NewWeighted(int64(workers)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule queues task for execution and returns immediately.
func (s *Scheduler) Schedule(ctx context.Context, topic string, task func(context.Context) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	s.wg.Add(1)
	taskCtx := context.WithoutCancel(ctx)

	go func() {
		defer s.wg.Done()

		// taskCtx is never cancelled, so Acquire only returns once a slot frees up.
		_ = s.slots.Acquire(taskCtx, 1)
		defer s.slots.Release(1)

		s.run(taskCtx, topic, task)
	}()

	return nil
}

func (s *Scheduler) run(ctx context.Context, topic string, task func(context.Context) error) {
	start := time.Now()
	var err error

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}

		if s.metrics != nil {
			s.metrics.RecordDelivery(ctx, topic, time.Since(start).Seconds(), err == nil)
		}

		if err != nil {
			s.logger.ErrorContext(ctx, "message handler failed",
				"topic", topic,
				"error", err,
			)
		}
	}()

	err = task(ctx)
}

// Wait blocks until every scheduled task, including tasks scheduled by
// running tasks, has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Shutdown stops accepting new tasks and waits for in-flight ones until ctx
// is done. Tasks still running when ctx expires are abandoned.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight handlers: %w", ctx.Err())
	}
}
