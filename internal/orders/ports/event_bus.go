package ports

import (
	"context"

	"github.com/dejobratic/orderflow/internal/orders/domain"
)

// EventBus defines the contract for publishing and consuming order lifecycle events.
// Publishing never waits for subscribers to finish, and events published
// before a subscriber is installed are not delivered to it.
type EventBus interface {
	PublishOrderCreated(ctx context.Context, event domain.OrderCreated) error
	PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmed) error
	SubscribeOrderCreated(ctx context.Context, handler func(context.Context, domain.OrderCreated) error) error
	SubscribeOrderConfirmed(ctx context.Context, handler func(context.Context, domain.OrderConfirmed) error) error
}
