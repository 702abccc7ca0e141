package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Query outcomes used as the "outcome" label on db_query_duration_seconds.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

type Metrics struct {
	meter         metric.Meter
	queryDuration metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	queryDuration, err := meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Order store query duration by operation and outcome"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_query_duration histogram: %w", err)
	}

	return &Metrics{meter: meter, queryDuration: queryDuration}, nil
}

func (m *Metrics) RecordQuery(ctx context.Context, operation, outcome string, durationSeconds float64) {
	m.queryDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// ObservePool exports connection counts of pool as gauges read at collection time.
func (m *Metrics) ObservePool(pool *pgxpool.Pool) error {
	total, err := m.meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections currently held by the pool, by state"))
	if err != nil {
		return fmt.Errorf("create db_pool_connections gauge: %w", err)
	}
	waits, err := m.meter.Int64ObservableCounter("db_pool_acquire_waits_total",
		metric.WithDescription("Acquires that had to wait for a free connection"))
	if err != nil {
		return fmt.Errorf("create db_pool_acquire_waits counter: %w", err)
	}

	_, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stat := pool.Stat()
		o.ObserveInt64(total, int64(stat.AcquiredConns()), metric.WithAttributes(attribute.String("state", "acquired")))
		o.ObserveInt64(total, int64(stat.IdleConns()), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(waits, stat.EmptyAcquireCount())
		return nil
	}, total, waits)
	if err != nil {
		return fmt.Errorf("register pool callback: %w", err)
	}
	return nil
}
