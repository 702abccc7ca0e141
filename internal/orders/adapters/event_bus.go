package adapters

import (
	"context"

	"github.com/dejobratic/orderflow/internal/messaging"
	"github.com/dejobratic/orderflow/internal/orders/domain"
)

// TopicEventBus routes lifecycle events through one typed topic per event kind.
type TopicEventBus struct {
	created   messaging.Topic[domain.OrderCreated]
	confirmed messaging.Topic[domain.OrderConfirmed]
}

func NewTopicEventBus(created messaging.Topic[domain.OrderCreated], confirmed messaging.Topic[domain.OrderConfirmed]) *TopicEventBus {
	return &TopicEventBus{created: created, confirmed: confirmed}
}

func (b *TopicEventBus) PublishOrderCreated(ctx context.Context, event domain.OrderCreated) error {
	return b.created.Publish(ctx, event)
}

func (b *TopicEventBus) PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmed) error {
	return b.confirmed.Publish(ctx, event)
}

func (b *TopicEventBus) SubscribeOrderCreated(ctx context.Context, handler func(context.Context, domain.OrderCreated) error) error {
	return b.created.Subscribe(ctx, handler)
}

func (b *TopicEventBus) SubscribeOrderConfirmed(ctx context.Context, handler func(context.Context, domain.OrderConfirmed) error) error {
	return b.confirmed.Subscribe(ctx, handler)
}
