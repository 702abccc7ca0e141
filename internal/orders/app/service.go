package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dejobratic/orderflow/internal/clock"
	"github.com/dejobratic/orderflow/internal/orders/app/commands"
	"github.com/dejobratic/orderflow/internal/orders/app/queries"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/metrics"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

// ErrUnexpected wraps every synchronous failure other than ports.ErrNotFound.
var ErrUnexpected = errors.New("unexpected failure")

// Dependencies are the collaborators the service is built from.
type Dependencies struct {
	Repo    ports.OrderRepository
	Events  ports.EventBus
	Gateway ports.PaymentGateway
	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Config tunes the background pipeline.
type Config struct {
	// PaymentMethodToken is sent with every authorization request.
	PaymentMethodToken string
	// DeliveryDelay is how long a confirmed order waits before it is delivered.
	DeliveryDelay time.Duration
}

// Service bundles use cases for handling orders via the API and the event pipeline.
type Service struct {
	events  ports.EventBus
	logger  *slog.Logger
	metrics *metrics.Metrics

	createOrder    commands.CommandHandler
	cancelOrder    *commands.CancelOrderCommandHandler
	processCreated *commands.ProcessCreatedOrderHandler
	processConfirm *commands.ProcessConfirmedOrderHandler

	getOrder       *queries.GetOrderQueryHandler
	getOrderStatus *queries.GetOrderStatusQueryHandler
	listOrders     *queries.ListOrdersQueryHandler
}

// NewService wires required dependencies.
func NewService(deps Dependencies, cfg Config) *Service {
	logger := deps.Logger.With("component", "order_service")

	coreCreate := commands.NewCreateOrderCommandHandler(deps.Repo, deps.Events, deps.Clock)

	return &Service{
		events:  deps.Events,
		logger:  logger,
		metrics: deps.Metrics,

		createOrder:    commands.NewObservableCommandHandler(coreCreate, logger, deps.Metrics),
		cancelOrder:    commands.NewCancelOrderCommandHandler(deps.Repo),
		processCreated: commands.NewProcessCreatedOrderHandler(deps.Gateway, deps.Repo, deps.Events, cfg.PaymentMethodToken),
		processConfirm: commands.NewProcessConfirmedOrderHandler(deps.Clock, cfg.DeliveryDelay, deps.Repo),

		getOrder:       queries.NewGetOrderQueryHandler(deps.Repo),
		getOrderStatus: queries.NewGetOrderStatusQueryHandler(deps.Repo),
		listOrders:     queries.NewListOrdersQueryHandler(deps.Repo),
	}
}

// Start installs the pipeline subscribers. It must run before the first order
// is created: events published earlier are never delivered.
func (s *Service) Start(ctx context.Context) error {
	if err := s.events.SubscribeOrderCreated(ctx, s.ProcessCreatedOrder); err != nil {
		return fmt.Errorf("subscribe %s: %w", domain.TopicOrderCreated, err)
	}
	if err := s.events.SubscribeOrderConfirmed(ctx, s.ProcessConfirmedOrder); err != nil {
		return fmt.Errorf("subscribe %s: %w", domain.TopicOrderConfirmed, err)
	}
	return nil
}

// CreateOrderInput captures payload for creating an order.
type CreateOrderInput struct {
	UserID string
	Amount decimal.Decimal
}

// CreateOrder persists a new order and returns it in StatusCreated without
// waiting for payment authorization. If the order was saved but its event
// could not be published, the order is returned together with the error.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	order, err := s.createOrder.Handle(ctx, commands.CreateOrderCommand{
		UserID: input.UserID,
		Amount: input.Amount,
	})
	return order, classify(err)
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.getOrder.Handle(ctx, queries.GetOrderQuery{OrderID: id})
	if err != nil {
		return nil, classify(err)
	}
	return order, nil
}

// GetOrderStatus returns the stored status of an order.
func (s *Service) GetOrderStatus(ctx context.Context, id string) (domain.OrderStatus, error) {
	status, err := s.getOrderStatus.Handle(ctx, queries.GetOrderStatusQuery{OrderID: id})
	if err != nil {
		return "", classify(err)
	}
	return status, nil
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	orders, err := s.listOrders.Handle(ctx, queries.ListOrdersQuery{Filter: filter})
	if err != nil {
		return nil, classify(err)
	}
	return orders, nil
}

// CancelOrder moves an order to StatusCancelled whatever its current status.
func (s *Service) CancelOrder(ctx context.Context, id string) (domain.OrderStatus, error) {
	status, err := s.cancelOrder.Handle(ctx, commands.CancelOrderCommand{OrderID: id})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to cancel order", "order_id", id, "error", err)
		return "", classify(err)
	}

	s.metrics.RecordStatusTransition(ctx, string(status), "cancel")
	s.logger.InfoContext(ctx, "order cancelled", "order_id", id)
	return status, nil
}

// ProcessCreatedOrder authorizes payment for a created order. Errors are
// terminal for the order: they are logged and counted, never retried.
func (s *Service) ProcessCreatedOrder(ctx context.Context, event domain.OrderCreated) error {
	status, err := s.processCreated.Handle(ctx, event)
	if status != "" {
		s.metrics.RecordStatusTransition(ctx, string(status), metrics.StageAuthorization)
	}
	if err != nil {
		s.pipelineFailed(ctx, metrics.StageAuthorization, event.Order.ID, err)
		return err
	}

	s.logger.InfoContext(ctx, "payment authorization applied",
		"order_id", event.Order.ID,
		"status", status,
	)
	return nil
}

// ProcessConfirmedOrder delivers a confirmed order after the delivery delay.
func (s *Service) ProcessConfirmedOrder(ctx context.Context, event domain.OrderConfirmed) error {
	status, err := s.processConfirm.Handle(ctx, event)
	if err != nil {
		s.pipelineFailed(ctx, metrics.StageDelivery, event.Order.ID, err)
		return err
	}

	s.metrics.RecordStatusTransition(ctx, string(status), metrics.StageDelivery)
	s.logger.InfoContext(ctx, "order delivered", "order_id", event.Order.ID)
	return nil
}

func (s *Service) pipelineFailed(ctx context.Context, stage, orderID string, err error) {
	reason := failureReason(err)
	s.metrics.RecordPipelineFailure(ctx, stage, reason)
	s.logger.ErrorContext(ctx, "order pipeline stopped",
		"order_id", orderID,
		"stage", stage,
		"reason", reason,
		"error", err,
	)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ports.ErrGatewayUnavailable):
		return "gateway_unavailable"
	case errors.Is(err, domain.ErrUnrecognizedPaymentOutcome):
		return "unrecognized_outcome"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// classify keeps ErrNotFound visible to callers and folds everything else
// into ErrUnexpected while preserving the original message.
func classify(err error) error {
	if err == nil || errors.Is(err, ports.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnexpected, err)
}
