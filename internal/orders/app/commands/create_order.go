package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dejobratic/orderflow/internal/clock"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

// CreateOrderCommand carries input that has already been validated by the caller.
type CreateOrderCommand struct {
	UserID string
	Amount decimal.Decimal
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type CreateOrderCommandHandler struct {
	repo   ports.OrderRepository
	events ports.EventBus
	clock  clock.Clock
}

func NewCreateOrderCommandHandler(
	repo ports.OrderRepository,
	events ports.EventBus,
	clock clock.Clock,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		repo:   repo,
		events: events,
		clock:  clock,
	}
}

// Handle persists a new order in StatusCreated and publishes OrderCreated.
// It returns as soon as the event is scheduled, before authorization runs.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	now := h.clock.Now()
	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    cmd.UserID,
		Amount:    cmd.Amount,
		Status:    domain.StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if err := h.events.PublishOrderCreated(ctx, domain.OrderCreated{Order: order}); err != nil {
		return &order, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &order, nil
}
