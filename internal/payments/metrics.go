package payments

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	processed metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	processed, err := meter.Int64Counter(
		"payments_processed_total",
		metric.WithDescription("Total number of payment requests processed, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payments_processed_total counter: %w", err)
	}

	return &Metrics{processed: processed}, nil
}

func (m *Metrics) RecordPayment(ctx context.Context, status string) {
	m.processed.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
