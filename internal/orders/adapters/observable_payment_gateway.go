package adapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/metrics"
	"github.com/dejobratic/orderflow/internal/orders/ports"
	"github.com/dejobratic/orderflow/internal/telemetry"
)

type ObservablePaymentGateway struct {
	gateway ports.PaymentGateway
	metrics *metrics.Metrics
}

func NewObservablePaymentGateway(gateway ports.PaymentGateway, metrics *metrics.Metrics) *ObservablePaymentGateway {
	return &ObservablePaymentGateway{
		gateway: gateway,
		metrics: metrics,
	}
}

func (g *ObservablePaymentGateway) Authorize(ctx context.Context, req ports.PaymentRequest) (domain.PaymentOutcome, error) {
	ctx, span := telemetry.StartSpan(ctx, "PaymentGateway.Authorize")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("user.id", req.UserID),
		attribute.String("payment.amount", req.Amount.String()),
	)

	start := time.Now()
	outcome, err := g.gateway.Authorize(ctx, req)
	duration := time.Since(start).Seconds()

	if err != nil {
		g.metrics.RecordPaymentAuthorization(ctx, "error", duration)
		telemetry.RecordSpanError(span, err)
		return "", err
	}

	g.metrics.RecordPaymentAuthorization(ctx, string(outcome), duration)
	telemetry.AddSpanEvent(span, "payment.authorized", attribute.String("payment.outcome", string(outcome)))
	telemetry.SetSpanSuccess(span)
	return outcome, nil
}
