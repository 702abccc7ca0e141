package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dejobratic/orderflow/internal/orders/app/commands"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

func createdEvent() domain.OrderCreated {
	now := time.Now().UTC()
	return domain.OrderCreated{Order: domain.Order{
		ID:        "order-1",
		UserID:    "user-1",
		Amount:    decimal.NewFromInt(250),
		Status:    domain.StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}}
}

func TestProcessCreatedOrder(t *testing.T) {
	t.Run("confirmed payment confirms the order and publishes", func(t *testing.T) {
		gateway := &mockGateway{}
		repo := &mockRepository{}
		events := &mockEventBus{}
		handler := commands.NewProcessCreatedOrderHandler(gateway, repo, events, "tok_test")

		status, err := handler.Handle(context.Background(), createdEvent())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if status != domain.StatusConfirmed {
			t.Errorf("expected confirmed, got %s", status)
		}

		if len(gateway.requests) != 1 {
			t.Fatalf("expected 1 authorization, got %d", len(gateway.requests))
		}
		req := gateway.requests[0]
		if req.UserID != "user-1" || req.PaymentMethodToken != "tok_test" || !req.Amount.Equal(decimal.NewFromInt(250)) {
			t.Errorf("unexpected payment request %+v", req)
		}

		if writes := repo.writes(); len(writes) != 1 || writes[0] != domain.StatusConfirmed {
			t.Errorf("expected a single confirmed write, got %v", writes)
		}
		if len(events.confirmed) != 1 || events.confirmed[0].Order.Status != domain.StatusConfirmed {
			t.Errorf("expected one confirmed event carrying the new status, got %+v", events.confirmed)
		}
	})

	t.Run("declined payment cancels without publishing", func(t *testing.T) {
		gateway := &mockGateway{authorizeFn: func(context.Context, ports.PaymentRequest) (domain.PaymentOutcome, error) {
			return domain.PaymentDeclined, nil
		}}
		repo := &mockRepository{}
		events := &mockEventBus{}
		handler := commands.NewProcessCreatedOrderHandler(gateway, repo, events, "tok_test")

		status, err := handler.Handle(context.Background(), createdEvent())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if status != domain.StatusCancelled {
			t.Errorf("expected cancelled, got %s", status)
		}
		if len(events.confirmed) != 0 {
			t.Errorf("expected no confirmed events, got %d", len(events.confirmed))
		}
	})

	t.Run("unrecognized outcome leaves the order untouched", func(t *testing.T) {
		gateway := &mockGateway{authorizeFn: func(context.Context, ports.PaymentRequest) (domain.PaymentOutcome, error) {
			return "pending", nil
		}}
		repo := &mockRepository{}
		handler := commands.NewProcessCreatedOrderHandler(gateway, repo, &mockEventBus{}, "tok_test")

		_, err := handler.Handle(context.Background(), createdEvent())
		if !errors.Is(err, domain.ErrUnrecognizedPaymentOutcome) {
			t.Fatalf("expected ErrUnrecognizedPaymentOutcome, got %v", err)
		}
		if writes := repo.writes(); len(writes) != 0 {
			t.Errorf("expected no writes, got %v", writes)
		}
	})

	t.Run("gateway failure leaves the order untouched", func(t *testing.T) {
		gateway := &mockGateway{authorizeFn: func(context.Context, ports.PaymentRequest) (domain.PaymentOutcome, error) {
			return "", ports.ErrGatewayUnavailable
		}}
		repo := &mockRepository{}
		handler := commands.NewProcessCreatedOrderHandler(gateway, repo, &mockEventBus{}, "tok_test")

		_, err := handler.Handle(context.Background(), createdEvent())
		if !errors.Is(err, ports.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
		if len(gateway.requests) != 1 {
			t.Errorf("expected exactly one attempt, got %d", len(gateway.requests))
		}
		if writes := repo.writes(); len(writes) != 0 {
			t.Errorf("expected no writes, got %v", writes)
		}
	})

	t.Run("vanished order is reported and not announced", func(t *testing.T) {
		repo := &mockRepository{updateStatusFn: func(context.Context, string, domain.OrderStatus) (int64, error) {
			return 0, nil
		}}
		events := &mockEventBus{}
		handler := commands.NewProcessCreatedOrderHandler(&mockGateway{}, repo, events, "tok_test")

		_, err := handler.Handle(context.Background(), createdEvent())
		if !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if len(events.confirmed) != 0 {
			t.Errorf("expected no confirmed events, got %d", len(events.confirmed))
		}
	})
}
