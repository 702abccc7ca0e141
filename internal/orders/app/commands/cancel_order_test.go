package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dejobratic/orderflow/internal/orders/app/commands"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

func TestCancelOrder(t *testing.T) {
	t.Run("cancels regardless of current status", func(t *testing.T) {
		repo := &mockRepository{}
		handler := commands.NewCancelOrderCommandHandler(repo)

		status, err := handler.Handle(context.Background(), commands.CancelOrderCommand{OrderID: "order-1"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if status != domain.StatusCancelled {
			t.Errorf("expected %s, got %s", domain.StatusCancelled, status)
		}
		if writes := repo.writes(); len(writes) != 1 || writes[0] != domain.StatusCancelled {
			t.Errorf("expected a single cancelled write, got %v", writes)
		}
	})

	t.Run("reports not found when nothing matched", func(t *testing.T) {
		repo := &mockRepository{updateStatusFn: func(context.Context, string, domain.OrderStatus) (int64, error) {
			return 0, nil
		}}
		handler := commands.NewCancelOrderCommandHandler(repo)

		_, err := handler.Handle(context.Background(), commands.CancelOrderCommand{OrderID: "missing"})
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("propagates store failures", func(t *testing.T) {
		storeErr := errors.New("timeout")
		repo := &mockRepository{updateStatusFn: func(context.Context, string, domain.OrderStatus) (int64, error) {
			return 0, storeErr
		}}
		handler := commands.NewCancelOrderCommandHandler(repo)

		_, err := handler.Handle(context.Background(), commands.CancelOrderCommand{OrderID: "order-1"})
		if !errors.Is(err, storeErr) {
			t.Errorf("expected store error, got %v", err)
		}
		if errors.Is(err, ports.ErrNotFound) {
			t.Error("store failure must not look like not found")
		}
	})
}
