package commands_test

import (
	"context"
	"sync"

	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

type mockRepository struct {
	insertFn       func(ctx context.Context, order domain.Order) error
	updateStatusFn func(ctx context.Context, id string, status domain.OrderStatus) (int64, error)

	mu      sync.Mutex
	updates []domain.OrderStatus
}

func (m *mockRepository) Insert(ctx context.Context, order domain.Order) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, order)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return nil, ports.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (int64, error) {
	m.mu.Lock()
	m.updates = append(m.updates, status)
	m.mu.Unlock()

	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return 1, nil
}

func (m *mockRepository) writes() []domain.OrderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OrderStatus(nil), m.updates...)
}

type mockEventBus struct {
	publishOrderCreatedFn   func(ctx context.Context, event domain.OrderCreated) error
	publishOrderConfirmedFn func(ctx context.Context, event domain.OrderConfirmed) error

	confirmed []domain.OrderConfirmed
}

func (m *mockEventBus) PublishOrderCreated(ctx context.Context, event domain.OrderCreated) error {
	if m.publishOrderCreatedFn != nil {
		return m.publishOrderCreatedFn(ctx, event)
	}
	return nil
}

func (m *mockEventBus) PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmed) error {
	m.confirmed = append(m.confirmed, event)
	if m.publishOrderConfirmedFn != nil {
		return m.publishOrderConfirmedFn(ctx, event)
	}
	return nil
}

func (m *mockEventBus) SubscribeOrderCreated(ctx context.Context, handler func(context.Context, domain.OrderCreated) error) error {
	return nil
}

func (m *mockEventBus) SubscribeOrderConfirmed(ctx context.Context, handler func(context.Context, domain.OrderConfirmed) error) error {
	return nil
}

type mockGateway struct {
	authorizeFn func(ctx context.Context, req ports.PaymentRequest) (domain.PaymentOutcome, error)

	requests []ports.PaymentRequest
}

func (m *mockGateway) Authorize(ctx context.Context, req ports.PaymentRequest) (domain.PaymentOutcome, error) {
	m.requests = append(m.requests, req)
	if m.authorizeFn != nil {
		return m.authorizeFn(ctx, req)
	}
	return domain.PaymentConfirmed, nil
}
