package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/dejobratic/orderflow/internal/messaging"
)

// Topic publishes JSON messages to the exchange using the topic name as the
// routing key. Each subscriber consumes from its own exclusive, auto-deleted
// queue with auto-ack, so nothing outlives the process and nothing is redelivered.
type Topic[T any] struct {
	conn      *Connection
	name      string
	scheduler *messaging.Scheduler
	logger    *slog.Logger
}

func NewTopic[T any](conn *Connection, name string, scheduler *messaging.Scheduler, logger *slog.Logger) *Topic[T] {
	return &Topic[T]{
		conn:      conn,
		name:      name,
		scheduler: scheduler,
		logger:    logger.With("component", "rabbitmq_topic", "topic", name),
	}
}

func (t *Topic[T]) Name() string {
	return t.name
}

func (t *Topic[T]) Publish(ctx context.Context, msg T) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", t.name, err)
	}

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(headers))

	err = t.conn.channel.PublishWithContext(ctx,
		t.conn.exchange, // exchange
		t.name,          // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s message: %w", t.name, err)
	}

	return nil
}

// Subscribe binds a fresh queue to the topic and hands every delivery to the
// scheduler. Consumption stops when ctx is done or the channel closes.
func (t *Topic[T]) Subscribe(ctx context.Context, handler messaging.Handler[T]) error {
	ch := t.conn.channel

	q, err := ch.QueueDeclare(
		"",    // random name
		false, // non-durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue for %s: %w", t.name, err)
	}

	if err := ch.QueueBind(q.Name, t.name, t.conn.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue for %s: %w", t.name, err)
	}

	deliveries, err := ch.Consume(
		q.Name, // queue
		"",     // consumer tag
		true,   // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", t.name, err)
	}

	go t.consume(ctx, deliveries, handler)

	return nil
}

func (t *Topic[T]) consume(ctx context.Context, deliveries <-chan amqp.Delivery, handler messaging.Handler[T]) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				t.logger.WarnContext(ctx, "delivery channel closed")
				return
			}

			var msg T
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				t.logger.ErrorContext(ctx, "discarding malformed message", "error", err)
				continue
			}

			msgCtx := otel.GetTextMapPropagator().Extract(ctx, headerCarrier(d.Headers))
			err := t.scheduler.Schedule(msgCtx, t.name, func(ctx context.Context) error {
				return handler(ctx, msg)
			})
			if err != nil {
				t.logger.ErrorContext(ctx, "dropping message", "error", err)
			}
		}
	}
}

// headerCarrier lets the OTel propagator read and write AMQP headers.
type headerCarrier amqp.Table

func (c headerCarrier) Get(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	c[key] = value
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
