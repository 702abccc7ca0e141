package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dejobratic/orderflow/internal/orders/domain"
)

// PaymentRequest is a charge submitted to the payment authority.
type PaymentRequest struct {
	UserID             string
	PaymentMethodToken string
	Amount             decimal.Decimal
}

// PaymentGateway authorizes charges against the remote payment service.
// Implementations relay the remote outcome verbatim and never retry.
type PaymentGateway interface {
	Authorize(ctx context.Context, req PaymentRequest) (domain.PaymentOutcome, error)
}

// ErrGatewayUnavailable is returned when the payment service cannot be reached
// or answers with a transport-level failure.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")
