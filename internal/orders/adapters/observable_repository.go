package adapters

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dejobratic/orderflow/internal/database"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
	"github.com/dejobratic/orderflow/internal/telemetry"
)

// ObservableRepository traces every store call and records its duration by outcome.
type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) Insert(ctx context.Context, order domain.Order) error {
	_, err := observe(ctx, r.metrics, "insert_order",
		[]attribute.KeyValue{attribute.String("order.id", order.ID)},
		func(ctx context.Context, _ trace.Span) (struct{}, error) {
			return struct{}{}, r.repo.Insert(ctx, order)
		})
	return err
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return observe(ctx, r.metrics, "get_order_by_id",
		[]attribute.KeyValue{attribute.String("order.id", id)},
		func(ctx context.Context, span trace.Span) (*domain.Order, error) {
			order, err := r.repo.GetByID(ctx, id)
			if err == nil {
				telemetry.AddSpanAttributes(span, attribute.String("order.status", string(order.Status)))
			}
			return order, err
		})
}

func (r *ObservableRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	attrs := []attribute.KeyValue{
		attribute.Int("page", filter.Page),
		attribute.Int("page_size", filter.PageSize),
	}
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.CreatedBefore != nil {
		attrs = append(attrs, attribute.String("filter.created_before", filter.CreatedBefore.Format(time.RFC3339)))
	}

	return observe(ctx, r.metrics, "list_orders", attrs,
		func(ctx context.Context, span trace.Span) ([]domain.Order, error) {
			orders, err := r.repo.List(ctx, filter)
			telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
			return orders, err
		})
}

func (r *ObservableRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (int64, error) {
	attrs := []attribute.KeyValue{
		attribute.String("order.id", id),
		attribute.String("order.new_status", string(status)),
	}

	return observe(ctx, r.metrics, "update_order_status", attrs,
		func(ctx context.Context, span trace.Span) (int64, error) {
			affected, err := r.repo.UpdateStatus(ctx, id, status)
			telemetry.AddSpanAttributes(span, attribute.Int64("rows.affected", affected))
			return affected, err
		})
}

func observe[T any](
	ctx context.Context,
	metrics *database.Metrics,
	operation string,
	attrs []attribute.KeyValue,
	call func(context.Context, trace.Span) (T, error),
) (T, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	telemetry.AddSpanAttributes(span, append(attrs, attribute.String("db.operation", operation))...)

	start := time.Now()
	result, err := call(ctx, span)
	metrics.RecordQuery(ctx, operation, queryOutcome(err), time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return result, err
	}

	telemetry.SetSpanSuccess(span)
	return result, nil
}

func queryOutcome(err error) string {
	switch {
	case err == nil:
		return database.OutcomeOK
	case errors.Is(err, ports.ErrNotFound):
		return database.OutcomeNotFound
	case errors.Is(err, ports.ErrDuplicateKey):
		return database.OutcomeConflict
	default:
		return database.OutcomeError
	}
}
