// Package queries holds the read-side use cases. They never write and need
// only the read half of the order store.
package queries

import (
	"context"

	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

// OrderReader is the read half of ports.OrderRepository.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error)
}

// GetOrderQuery represents a request to retrieve an order by its ID.
type GetOrderQuery struct {
	OrderID string
}

// GetOrderQueryHandler returns the stored order or ports.ErrNotFound.
type GetOrderQueryHandler struct {
	orders OrderReader
}

func NewGetOrderQueryHandler(orders OrderReader) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{orders: orders}
}

func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	return h.orders.GetByID(ctx, query.OrderID)
}
