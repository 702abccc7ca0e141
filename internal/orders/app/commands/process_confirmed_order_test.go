package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dejobratic/orderflow/internal/clock"
	"github.com/dejobratic/orderflow/internal/orders/app/commands"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

func confirmedEvent() domain.OrderConfirmed {
	return domain.OrderConfirmed{Order: domain.Order{
		ID:     "order-1",
		UserID: "user-1",
		Amount: decimal.NewFromInt(250),
		Status: domain.StatusConfirmed,
	}}
}

func TestProcessConfirmedOrder(t *testing.T) {
	const delay = 10 * time.Second

	t.Run("delivers only after the delay elapses", func(t *testing.T) {
		clk := clock.NewManual(time.Now())
		repo := &mockRepository{}
		handler := commands.NewProcessConfirmedOrderHandler(clk, delay, repo)

		done := make(chan error, 1)
		go func() {
			_, err := handler.Handle(context.Background(), confirmedEvent())
			done <- err
		}()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := clk.BlockUntil(ctx, 1); err != nil {
			t.Fatalf("handler never started waiting: %v", err)
		}

		clk.Advance(delay - time.Millisecond)
		if writes := repo.writes(); len(writes) != 0 {
			t.Fatalf("expected no writes before the delay, got %v", writes)
		}

		clk.Advance(time.Millisecond)
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("handler did not finish after the delay")
		}

		if writes := repo.writes(); len(writes) != 1 || writes[0] != domain.StatusDelivered {
			t.Errorf("expected a single delivered write, got %v", writes)
		}
	})

	t.Run("reports vanished orders", func(t *testing.T) {
		repo := &mockRepository{updateStatusFn: func(context.Context, string, domain.OrderStatus) (int64, error) {
			return 0, nil
		}}
		handler := commands.NewProcessConfirmedOrderHandler(clock.NewManual(time.Now()), 0, repo)

		_, err := handler.Handle(context.Background(), confirmedEvent())
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects orders that are not confirmed", func(t *testing.T) {
		repo := &mockRepository{}
		handler := commands.NewProcessConfirmedOrderHandler(clock.NewManual(time.Now()), 0, repo)

		event := confirmedEvent()
		event.Order.Status = domain.StatusCreated

		_, err := handler.Handle(context.Background(), event)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
		if writes := repo.writes(); len(writes) != 0 {
			t.Errorf("expected no writes, got %v", writes)
		}
	})
}
