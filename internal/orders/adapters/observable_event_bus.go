package adapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dejobratic/orderflow/internal/messaging"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
	"github.com/dejobratic/orderflow/internal/telemetry"
)

// ObservableEventBus adds producer and consumer spans around the order events
// and records publish latency.
type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *messaging.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *messaging.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, event domain.OrderCreated) error {
	return e.publish(ctx, "EventBus.PublishOrderCreated", domain.TopicOrderCreated, event.Order.ID, func(ctx context.Context) error {
		return e.bus.PublishOrderCreated(ctx, event)
	})
}

func (e *ObservableEventBus) PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmed) error {
	return e.publish(ctx, "EventBus.PublishOrderConfirmed", domain.TopicOrderConfirmed, event.Order.ID, func(ctx context.Context) error {
		return e.bus.PublishOrderConfirmed(ctx, event)
	})
}

func (e *ObservableEventBus) SubscribeOrderCreated(ctx context.Context, handler func(context.Context, domain.OrderCreated) error) error {
	return e.bus.SubscribeOrderCreated(ctx, func(ctx context.Context, event domain.OrderCreated) error {
		return handle(ctx, "EventBus.HandleOrderCreated", domain.TopicOrderCreated, event.Order.ID, func(ctx context.Context) error {
			return handler(ctx, event)
		})
	})
}

func (e *ObservableEventBus) SubscribeOrderConfirmed(ctx context.Context, handler func(context.Context, domain.OrderConfirmed) error) error {
	return e.bus.SubscribeOrderConfirmed(ctx, func(ctx context.Context, event domain.OrderConfirmed) error {
		return handle(ctx, "EventBus.HandleOrderConfirmed", domain.TopicOrderConfirmed, event.Order.ID, func(ctx context.Context) error {
			return handler(ctx, event)
		})
	})
}

func (e *ObservableEventBus) publish(ctx context.Context, spanName, topic, orderID string, fn func(context.Context) error) error {
	ctx, span := telemetry.StartProducerSpan(ctx, spanName, topic)
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("order.id", orderID))

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, topic, duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

// handle wraps a subscriber invocation in a consumer span. Delivery timing is
// recorded by the scheduler.
func handle(ctx context.Context, spanName, topic, orderID string, fn func(context.Context) error) error {
	ctx, span := telemetry.StartConsumerSpan(ctx, spanName, topic)
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("order.id", orderID))

	if err := fn(ctx); err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
