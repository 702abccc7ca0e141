package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/dejobratic/orderflow/internal/orders/app"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

// OrderService is the application surface the HTTP layer drives.
type OrderService interface {
	CreateOrder(ctx context.Context, input app.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrderStatus(ctx context.Context, id string) (domain.OrderStatus, error)
	ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error)
	CancelOrder(ctx context.Context, id string) (domain.OrderStatus, error)
}

// Handler exposes HTTP endpoints for order operations.
type Handler struct {
	service OrderService
}

// NewHandler constructs a Handler.
func NewHandler(service OrderService) *Handler {
	return &Handler{service: service}
}

// Register binds the order handlers to the provided router.
func (h *Handler) Register(router *mux.Router) {
	orders := router.PathPrefix("/v1/orders").Subrouter()
	orders.HandleFunc("", h.createOrder).Methods(http.MethodPost)
	orders.HandleFunc("", h.listOrders).Methods(http.MethodGet)
	orders.HandleFunc("/{id}", h.getOrder).Methods(http.MethodGet)
	orders.HandleFunc("/{id}/status", h.getOrderStatus).Methods(http.MethodGet)
	orders.HandleFunc("/{id}/cancel", h.cancelOrder).Methods(http.MethodPatch)
}

type createOrderRequest struct {
	UserID string          `json:"userId"`
	Amount json.RawMessage `json:"amount"`
}

type orderSummary struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Status    domain.OrderStatus `json:"status"`
	Amount    json.Number        `json:"amount"`
}

type orderResponse struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Amount    json.Number        `json:"amount"`
	Status    domain.OrderStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type statusResponse struct {
	OrderStatus domain.OrderStatus `json:"orderStatus"`
}

func toOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		ID:        order.ID,
		UserID:    order.UserID,
		Amount:    json.Number(order.Amount.String()),
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if payload.UserID == "" {
		writeError(w, http.StatusBadRequest, missingParameter("userId"))
		return
	}

	amount, msg := parseAmount(payload.Amount)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), app.CreateOrderInput{
		UserID: payload.UserID,
		Amount: amount,
	})
	if err != nil {
		writeUnexpected(w, "creating an order", err)
		return
	}

	writeJSON(w, http.StatusCreated, orderSummary{
		ID:        order.ID,
		CreatedAt: order.CreatedAt,
		Status:    order.Status,
		Amount:    json.Number(order.Amount.String()),
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, id, "fetching the order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

func (h *Handler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	status, err := h.service.GetOrderStatus(r.Context(), id)
	if err != nil {
		writeServiceError(w, id, "fetching the order status", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{OrderStatus: status})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	status, err := h.service.CancelOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, id, "cancelling the order", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{OrderStatus: status})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := ports.ListFilter{}

	if statusParam := query.Get("status"); statusParam != "" {
		status, err := domain.ParseStatus(statusParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, invalidParameter("status"))
			return
		}
		filter.Status = &status
	}

	if pageParam := query.Get("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil {
			filter.Page = page
		}
	}

	if pageSizeParam := query.Get("page_size"); pageSizeParam != "" {
		if pageSize, err := strconv.Atoi(pageSizeParam); err == nil {
			filter.PageSize = pageSize
		}
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		writeUnexpected(w, "listing orders", err)
		return
	}

	response := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		response = append(response, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": response})
}

func orderID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("The provided Order ID: %q is invalid", id))
		return "", false
	}
	return id, true
}

// Amounts are stored as NUMERIC(14, 2): at most two fractional digits and
// twelve integer digits.
const amountScale = 2

var amountLimit = decimal.New(1, 12)

// parseAmount returns the amount or a client-facing validation message. Zero
// counts as missing, like an absent field.
func parseAmount(raw json.RawMessage) (decimal.Decimal, string) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Decimal{}, missingParameter("amount")
	}

	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(raw); err != nil {
		return decimal.Decimal{}, invalidParameter("amount")
	}

	switch {
	case amount.IsZero():
		return decimal.Decimal{}, missingParameter("amount")
	case amount.IsNegative(),
		!amount.Equal(amount.Round(amountScale)),
		amount.GreaterThanOrEqual(amountLimit):
		return decimal.Decimal{}, invalidParameter("amount")
	}
	return amount, ""
}

func missingParameter(name string) string {
	return fmt.Sprintf("Failed to find a value for required parameter %q", name)
}

func invalidParameter(name string) string {
	return fmt.Sprintf("Invalid value provided for parameter %q", name)
}

func writeServiceError(w http.ResponseWriter, id, action string, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Order with ID: %q not found", id))
		return
	}
	writeUnexpected(w, action, err)
}

func writeUnexpected(w http.ResponseWriter, action string, err error) {
	writeError(w, http.StatusInternalServerError,
		fmt.Sprintf("Unexpected failure occurred when %s. Details: %s", action, err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
