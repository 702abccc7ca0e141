package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dejobratic/orderflow/internal/clock"
	"github.com/dejobratic/orderflow/internal/orders/adapters/memory"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/metrics"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newReporter(t *testing.T, orders OrderLister) (*StaleOrderReporter, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := metrics.NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStaleOrderReporter(orders, clock.NewManual(now), 5*time.Minute, m, logger), reader
}

func staleGauge(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "orders_stale" {
				continue
			}
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			require.True(t, ok)
			require.Len(t, gauge.DataPoints, 1)
			return gauge.DataPoints[0].Value
		}
	}
	t.Fatal("orders_stale not recorded")
	return 0
}

func insert(t *testing.T, repo *memory.Repository, id string, status domain.OrderStatus, age time.Duration) {
	t.Helper()

	created := now.Add(-age)
	require.NoError(t, repo.Insert(context.Background(), domain.Order{
		ID:        id,
		UserID:    "user-1",
		Amount:    decimal.NewFromInt(10),
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}))
}

func TestStaleOrderReporterCheck(t *testing.T) {
	t.Run("counts only old orders still awaiting authorization", func(t *testing.T) {
		repo := memory.NewRepository()
		insert(t, repo, "stale-1", domain.StatusCreated, 10*time.Minute)
		insert(t, repo, "stale-2", domain.StatusCreated, time.Hour)
		insert(t, repo, "fresh", domain.StatusCreated, time.Minute)
		insert(t, repo, "confirmed", domain.StatusConfirmed, time.Hour)
		insert(t, repo, "cancelled", domain.StatusCancelled, time.Hour)

		reporter, reader := newReporter(t, repo)

		count, err := reporter.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, int64(2), staleGauge(t, reader))

		got, err := repo.GetByID(context.Background(), "stale-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCreated, got.Status, "reporter must not change orders")
	})

	t.Run("walks every page", func(t *testing.T) {
		repo := memory.NewRepository()
		for i := range stalePageSize + 5 {
			insert(t, repo, fmt.Sprintf("stale-%d", i), domain.StatusCreated, time.Hour+time.Duration(i)*time.Second)
		}

		reporter, _ := newReporter(t, repo)

		count, err := reporter.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, stalePageSize+5, count)
	})

	t.Run("reports zero when nothing is stuck", func(t *testing.T) {
		reporter, reader := newReporter(t, memory.NewRepository())

		count, err := reporter.Check(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Zero(t, staleGauge(t, reader))
	})

	t.Run("propagates listing failures", func(t *testing.T) {
		reporter, _ := newReporter(t, failingLister{})

		_, err := reporter.Check(context.Background())
		assert.ErrorContains(t, err, "list stale orders")
	})
}

func TestStaleOrderReporterSchedule(t *testing.T) {
	t.Run("rejects malformed schedules", func(t *testing.T) {
		reporter, _ := newReporter(t, memory.NewRepository())

		assert.Error(t, reporter.Start("every minute"))
	})

	t.Run("starts and stops", func(t *testing.T) {
		reporter, _ := newReporter(t, memory.NewRepository())

		require.NoError(t, reporter.Start("@every 1h"))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		reporter.Stop(ctx)
		assert.NoError(t, ctx.Err())
	})
}

type failingLister struct{}

func (failingLister) List(context.Context, ports.ListFilter) ([]domain.Order, error) {
	return nil, errors.New("connection refused")
}
