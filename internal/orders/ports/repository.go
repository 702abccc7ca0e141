package ports

import (
	"context"
	"errors"
	"time"

	"github.com/dejobratic/orderflow/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	// UpdateStatus writes status to the order matching id and reports how many
	// records matched. A write that leaves the status unchanged still counts.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (int64, error)
}

// ListFilter narrows list queries by status, age and pagination.
type ListFilter struct {
	Status        *domain.OrderStatus
	CreatedBefore *time.Time
	Page          int
	PageSize      int
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateKey is returned when an order id is inserted twice.
	ErrDuplicateKey = errors.New("order already exists")
)
