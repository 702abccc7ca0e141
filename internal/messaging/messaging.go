// Package messaging provides typed publish/subscribe topics used to hand work
// from one workflow stage to the next.
//
// Delivery is at-most-once: messages are not retained, a subscriber installed
// after a message was published never sees it, and failed handlers are not
// retried.
package messaging

import (
	"context"
	"errors"
)

// Handler processes a single message delivered on a topic.
type Handler[T any] func(ctx context.Context, msg T) error

// Topic is a named channel carrying messages of a single payload type.
type Topic[T any] interface {
	Name() string
	// Publish schedules msg for every current subscriber and returns without
	// waiting for the handlers to finish.
	Publish(ctx context.Context, msg T) error
	Subscribe(ctx context.Context, handler Handler[T]) error
}

// ErrClosed is returned when publishing through a scheduler that has shut down.
var ErrClosed = errors.New("messaging: scheduler closed")
