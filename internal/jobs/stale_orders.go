package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dejobratic/orderflow/internal/clock"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/metrics"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

const stalePageSize = 100

// OrderLister is the slice of the order repository the reporter reads from.
type OrderLister interface {
	List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error)
}

// StaleOrderReporter counts orders stuck in StatusCreated on a cron schedule.
type StaleOrderReporter struct {
	orders    OrderLister
	clock     clock.Clock
	threshold time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cron      *cron.Cron
}

func NewStaleOrderReporter(orders OrderLister, clk clock.Clock, threshold time.Duration, metrics *metrics.Metrics, logger *slog.Logger) *StaleOrderReporter {
	return &StaleOrderReporter{
		orders:    orders,
		clock:     clk,
		threshold: threshold,
		metrics:   metrics,
		logger:    logger.With("component", "stale_order_reporter"),
		cron:      cron.New(),
	}
}

// Start schedules Check using a standard cron expression or descriptor such as "@every 1m".
func (r *StaleOrderReporter) Start(schedule string) error {
	_, err := r.cron.AddFunc(schedule, func() {
		ctx := context.Background()
		if _, err := r.Check(ctx); err != nil {
			r.logger.ErrorContext(ctx, "stale order check failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule stale order check %q: %w", schedule, err)
	}

	r.cron.Start()
	r.logger.Info("stale order reporter started", "schedule", schedule, "threshold", r.threshold)
	return nil
}

// Stop halts scheduling and waits for a running check to return or ctx to expire.
func (r *StaleOrderReporter) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
	r.logger.Info("stale order reporter stopped")
}

// Check counts orders created before now minus the threshold that are still
// in StatusCreated, then records the count.
func (r *StaleOrderReporter) Check(ctx context.Context) (int, error) {
	status := domain.StatusCreated
	cutoff := r.clock.Now().Add(-r.threshold)
	filter := ports.ListFilter{
		Status:        &status,
		CreatedBefore: &cutoff,
		PageSize:      stalePageSize,
	}

	count := 0
	var oldest *domain.Order
	for page := 1; ; page++ {
		filter.Page = page
		orders, err := r.orders.List(ctx, filter)
		if err != nil {
			return 0, fmt.Errorf("list stale orders: %w", err)
		}

		count += len(orders)
		if len(orders) > 0 {
			last := orders[len(orders)-1]
			oldest = &last
		}
		if len(orders) < stalePageSize {
			break
		}
	}

	r.metrics.RecordStaleOrders(ctx, int64(count))
	if count > 0 {
		r.logger.WarnContext(ctx, "orders stuck awaiting payment authorization",
			"count", count,
			"oldest_order_id", oldest.ID,
			"oldest_created_at", oldest.CreatedAt,
		)
	}

	return count, nil
}
