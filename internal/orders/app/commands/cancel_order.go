package commands

import (
	"context"

	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

type CancelOrderCommand struct {
	OrderID string
}

type CancelOrderCommandHandler struct {
	repo ports.OrderRepository
}

func NewCancelOrderCommandHandler(repo ports.OrderRepository) *CancelOrderCommandHandler {
	return &CancelOrderCommandHandler{repo: repo}
}

// Handle cancels the order whatever its current status. It does not
// coordinate with background steps for the same order: the last write wins.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (domain.OrderStatus, error) {
	if err := applyStatus(ctx, h.repo, cmd.OrderID, domain.StatusCancelled); err != nil {
		return "", err
	}
	return domain.StatusCancelled, nil
}
