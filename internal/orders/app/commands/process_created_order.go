package commands

import (
	"context"
	"fmt"

	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

// ProcessCreatedOrderHandler authorizes payment for a freshly created order and
// moves it to confirmed or cancelled.
type ProcessCreatedOrderHandler struct {
	gateway            ports.PaymentGateway
	repo               ports.OrderRepository
	events             ports.EventBus
	paymentMethodToken string
}

func NewProcessCreatedOrderHandler(
	gateway ports.PaymentGateway,
	repo ports.OrderRepository,
	events ports.EventBus,
	paymentMethodToken string,
) *ProcessCreatedOrderHandler {
	return &ProcessCreatedOrderHandler{
		gateway:            gateway,
		repo:               repo,
		events:             events,
		paymentMethodToken: paymentMethodToken,
	}
}

// Handle returns the status written for the order. Any error leaves the order
// where it was before the failing step.
func (h *ProcessCreatedOrderHandler) Handle(ctx context.Context, event domain.OrderCreated) (domain.OrderStatus, error) {
	order := event.Order

	outcome, err := h.gateway.Authorize(ctx, ports.PaymentRequest{
		UserID:             order.UserID,
		PaymentMethodToken: h.paymentMethodToken,
		Amount:             order.Amount,
	})
	if err != nil {
		return "", fmt.Errorf("authorize payment for order %s: %w", order.ID, err)
	}

	next, err := domain.AuthorizationStatus(order, outcome)
	if err != nil {
		return "", fmt.Errorf("order %s: %w", order.ID, err)
	}

	if err := applyStatus(ctx, h.repo, order.ID, next); err != nil {
		return "", err
	}

	if next != domain.StatusConfirmed {
		return next, nil
	}

	order.Status = next
	if err := h.events.PublishOrderConfirmed(ctx, domain.OrderConfirmed{Order: order}); err != nil {
		return next, fmt.Errorf("order %s confirmed but failed to publish event: %w", order.ID, err)
	}

	return next, nil
}
