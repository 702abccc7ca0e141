package queries

import (
	"context"

	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

type ListOrdersQuery struct {
	Filter ports.ListFilter
}

type ListOrdersQueryHandler struct {
	orders OrderReader
}

func NewListOrdersQueryHandler(orders OrderReader) *ListOrdersQueryHandler {
	return &ListOrdersQueryHandler{orders: orders}
}

func (h *ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]domain.Order, error) {
	return h.orders.List(ctx, query.Filter)
}
