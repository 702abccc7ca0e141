package payments

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// Handler exposes the processor over HTTP.
type Handler struct {
	processor *Processor
}

func NewHandler(processor *Processor) *Handler {
	return &Handler{processor: processor}
}

func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/payments", h.processPayment).Methods(http.MethodPost)
}

type paymentRequest struct {
	UserID        string          `json:"userId"`
	PaymentMethod string          `json:"paymentMethod"`
	Amount        json.RawMessage `json:"amount"`
}

type paymentResponse struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	var payload paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if payload.UserID == "" {
		writeError(w, http.StatusBadRequest, missingParameter("userId"))
		return
	}
	if payload.PaymentMethod == "" {
		writeError(w, http.StatusBadRequest, missingParameter("paymentMethod"))
		return
	}

	amount, msg := parseAmount(payload.Amount)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	result := h.processor.Process(r.Context(), Request{
		UserID:        payload.UserID,
		PaymentMethod: payload.PaymentMethod,
		Amount:        amount,
	})

	writeJSON(w, http.StatusCreated, paymentResponse{ID: result.ID, Status: result.Status})
}

// parseAmount treats zero like an absent amount and rejects anything that is
// not a non-negative number.
func parseAmount(raw json.RawMessage) (decimal.Decimal, string) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Decimal{}, missingParameter("amount")
	}

	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(raw); err != nil || amount.IsNegative() {
		return decimal.Decimal{}, invalidParameter("amount")
	}
	if amount.IsZero() {
		return decimal.Decimal{}, missingParameter("amount")
	}
	return amount, ""
}

func missingParameter(name string) string {
	return fmt.Sprintf("Failed to find a value for required parameter %q", name)
}

func invalidParameter(name string) string {
	return fmt.Sprintf("Invalid value provided for parameter %q", name)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
