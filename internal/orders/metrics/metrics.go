package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Pipeline stages reported on order_pipeline_failures_total.
const (
	StageAuthorization = "authorization"
	StageDelivery      = "delivery"
)

type Metrics struct {
	ordersCreatedTotal    metric.Int64Counter
	orderCreationDuration metric.Float64Histogram
	statusTransitions     metric.Int64Counter
	pipelineFailures      metric.Int64Counter
	paymentAuthDuration   metric.Float64Histogram
	staleOrders           metric.Int64Gauge
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersCreatedTotal, err = meter.Int64Counter(
		"orders_created_total",
		metric.WithDescription("Total number of orders created"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_created_total counter: %w", err)
	}

	m.orderCreationDuration, err = meter.Float64Histogram(
		"order_creation_duration_seconds",
		metric.WithDescription("Duration of order creation operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_creation_duration histogram: %w", err)
	}

	m.statusTransitions, err = meter.Int64Counter(
		"order_status_transitions_total",
		metric.WithDescription("Status writes applied to orders"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_status_transitions_total counter: %w", err)
	}

	m.pipelineFailures, err = meter.Int64Counter(
		"order_pipeline_failures_total",
		metric.WithDescription("Background workflow steps that ended in an error"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_pipeline_failures_total counter: %w", err)
	}

	m.paymentAuthDuration, err = meter.Float64Histogram(
		"payment_authorization_duration_seconds",
		metric.WithDescription("Duration of payment authorization calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_authorization_duration histogram: %w", err)
	}

	m.staleOrders, err = meter.Int64Gauge(
		"orders_stale",
		metric.WithDescription("Orders still awaiting authorization past the stale threshold"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_stale gauge: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderCreated(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersCreatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordOrderCreationDuration(ctx context.Context, durationSeconds float64) {
	m.orderCreationDuration.Record(ctx, durationSeconds)
}

// RecordStatusTransition counts a status write. source is the operation that
// issued it, e.g. "cancel" or "authorization".
func (m *Metrics) RecordStatusTransition(ctx context.Context, status, source string) {
	m.statusTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("source", source),
	))
}

func (m *Metrics) RecordPipelineFailure(ctx context.Context, stage, reason string) {
	m.pipelineFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("reason", reason),
	))
}

func (m *Metrics) RecordPaymentAuthorization(ctx context.Context, outcome string, durationSeconds float64) {
	m.paymentAuthDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordStaleOrders(ctx context.Context, count int64) {
	m.staleOrders.Record(ctx, count)
}
