package commands

import (
	"context"
	"fmt"

	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

// applyStatus is the single write path for status changes. Zero matched rows
// means the order does not exist.
func applyStatus(ctx context.Context, repo ports.OrderRepository, id string, status domain.OrderStatus) error {
	affected, err := repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("update order %s to %s: %w", id, status, err)
	}
	if affected == 0 {
		return fmt.Errorf("update order %s to %s: %w", id, status, ports.ErrNotFound)
	}
	return nil
}
