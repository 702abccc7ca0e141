package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dejobratic/orderflow/internal/clock"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

// ProcessConfirmedOrderHandler marks a confirmed order delivered once the
// delivery lead time has passed.
type ProcessConfirmedOrderHandler struct {
	clock clock.Clock
	delay time.Duration
	repo  ports.OrderRepository
}

func NewProcessConfirmedOrderHandler(clock clock.Clock, delay time.Duration, repo ports.OrderRepository) *ProcessConfirmedOrderHandler {
	return &ProcessConfirmedOrderHandler{
		clock: clock,
		delay: delay,
		repo:  repo,
	}
}

func (h *ProcessConfirmedOrderHandler) Handle(ctx context.Context, event domain.OrderConfirmed) (domain.OrderStatus, error) {
	order := event.Order

	next, err := domain.DeliveryStatus(order)
	if err != nil {
		return "", fmt.Errorf("order %s: %w", order.ID, err)
	}

	select {
	case <-h.clock.After(h.delay):
	case <-ctx.Done():
		return "", fmt.Errorf("wait for delivery of order %s: %w", order.ID, ctx.Err())
	}

	if err := applyStatus(ctx, h.repo, order.ID, next); err != nil {
		return "", err
	}

	return next, nil
}
