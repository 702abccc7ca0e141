package queries

import (
	"context"

	"github.com/dejobratic/orderflow/internal/orders/domain"
)

type GetOrderStatusQuery struct {
	OrderID string
}

// GetOrderStatusQueryHandler reads the status as currently stored. The result
// can trail background steps still in flight for the order.
type GetOrderStatusQueryHandler struct {
	orders OrderReader
}

func NewGetOrderStatusQueryHandler(orders OrderReader) *GetOrderStatusQueryHandler {
	return &GetOrderStatusQueryHandler{orders: orders}
}

func (h *GetOrderStatusQueryHandler) Handle(ctx context.Context, query GetOrderStatusQuery) (domain.OrderStatus, error) {
	order, err := h.orders.GetByID(ctx, query.OrderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}
