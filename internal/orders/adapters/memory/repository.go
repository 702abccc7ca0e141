package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/dejobratic/orderflow/internal/clock"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

const defaultPageSize = 20

// Repository keeps orders in a map guarded by a mutex. Orders are stored and
// returned by value, so callers never share state with the store.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	clock  clock.Clock
}

type Option func(*Repository)

// WithClock sets the clock that stamps UpdatedAt on status writes.
func WithClock(clk clock.Clock) Option {
	return func(r *Repository) { r.clock = clk }
}

func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		orders: make(map[string]domain.Order),
		clock:  clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Insert(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return ports.ErrDuplicateKey
	}
	r.orders[order.ID] = order
	return nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	order, ok := r.orders[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ports.ErrNotFound
	}
	return &order, nil
}

// List returns matching orders newest first. Pages are 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	matched := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if matches(order, filter) {
			matched = append(matched, order)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	page, size := max(filter.Page, 1), filter.PageSize
	if size <= 0 {
		size = defaultPageSize
	}

	start := (page - 1) * size
	if start >= len(matched) {
		return []domain.Order{}, nil
	}
	return slices.Clone(matched[start:min(start+size, len(matched))]), nil
}

// UpdateStatus overwrites the status and reports how many orders matched.
func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return 0, nil
	}

	order.Status = status
	order.UpdatedAt = r.clock.Now().UTC()
	r.orders[id] = order
	return 1, nil
}

func matches(order domain.Order, filter ports.ListFilter) bool {
	if filter.Status != nil && order.Status != *filter.Status {
		return false
	}
	if filter.CreatedBefore != nil && !order.CreatedAt.Before(*filter.CreatedBefore) {
		return false
	}
	return true
}
