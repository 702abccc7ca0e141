package commands

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/metrics"
	"github.com/dejobratic/orderflow/internal/telemetry"
)

// ObservableCommandHandler wraps order creation with a span, a log line per
// outcome and the orders_created_total / order_creation_duration_seconds metrics.
type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "CreateOrderCommand.Handle")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.user_id", cmd.UserID),
		attribute.String("order.amount", cmd.Amount.String()),
	)

	start := time.Now()
	order, err := o.handler.Handle(ctx, cmd)
	o.metrics.RecordOrderCreationDuration(ctx, time.Since(start).Seconds())
	o.metrics.RecordOrderCreated(ctx, err == nil)

	// A saved order may come back alongside a publish error.
	logAttrs := []any{"user_id", cmd.UserID, "amount", cmd.Amount.String()}
	if order != nil {
		logAttrs = append(logAttrs, "order_id", order.ID)
		telemetry.AddSpanAttributes(span, attribute.String("order.id", order.ID))
	}

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to create order", append(logAttrs, "error", err)...)
		return order, err
	}

	telemetry.SetSpanSuccess(span)
	o.logger.InfoContext(ctx, "order created", logAttrs...)
	return order, nil
}
