package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/dejobratic/orderflow/internal/messaging"
)

// Topic is an in-process topic. Subscriptions live for the process lifetime
// and nothing is retained once published.
type Topic[T any] struct {
	name      string
	scheduler *messaging.Scheduler

	mu       sync.RWMutex
	handlers []messaging.Handler[T]
}

// NewTopic creates an in-process topic whose handlers run on scheduler.
func NewTopic[T any](name string, scheduler *messaging.Scheduler) *Topic[T] {
	return &Topic[T]{name: name, scheduler: scheduler}
}

func (t *Topic[T]) Name() string {
	return t.name
}

// Publish schedules msg for each subscriber in subscription order. With no
// subscribers the message is dropped.
func (t *Topic[T]) Publish(ctx context.Context, msg T) error {
	t.mu.RLock()
	handlers := slices.Clone(t.handlers)
	t.mu.RUnlock()

	for _, handler := range handlers {
		err := t.scheduler.Schedule(ctx, t.name, func(ctx context.Context) error {
			return handler(ctx, msg)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *Topic[T]) Subscribe(_ context.Context, handler messaging.Handler[T]) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, handler)
	return nil
}
