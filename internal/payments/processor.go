package payments

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
)

type Request struct {
	UserID        string
	PaymentMethod string
	Amount        decimal.Decimal
}

type Result struct {
	ID     string
	Status Status
}

// Processor is a stand-in for a card processor. It confirms a charge when a
// random draw from [0, floor(amount)) is even, so amounts below one always
// confirm.
type Processor struct {
	draw    func(n int64) int64
	logger  *slog.Logger
	metrics *Metrics
}

type ProcessorOption func(*Processor)

// WithRandom replaces the random source. draw must return a value in [0, n).
func WithRandom(draw func(n int64) int64) ProcessorOption {
	return func(p *Processor) {
		p.draw = draw
	}
}

func WithMetrics(metrics *Metrics) ProcessorOption {
	return func(p *Processor) {
		p.metrics = metrics
	}
}

func NewProcessor(logger *slog.Logger, opts ...ProcessorOption) *Processor {
	p := &Processor{
		draw:   rand.Int64N,
		logger: logger.With("component", "payment_processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Process(ctx context.Context, req Request) Result {
	status := StatusDeclined
	bound := drawBound(req.Amount)
	if bound < 1 || p.draw(bound)%2 == 0 {
		status = StatusConfirmed
	}

	result := Result{ID: uuid.NewString(), Status: status}

	if p.metrics != nil {
		p.metrics.RecordPayment(ctx, string(status))
	}
	p.logger.InfoContext(ctx, "payment processed",
		"payment_id", result.ID,
		"user_id", req.UserID,
		"amount", req.Amount.String(),
		"status", status,
	)
	return result
}

var maxBound = decimal.NewFromInt(math.MaxInt64)

// drawBound is floor(amount), capped at math.MaxInt64.
func drawBound(amount decimal.Decimal) int64 {
	floor := amount.Floor()
	if floor.GreaterThanOrEqual(maxBound) {
		return math.MaxInt64
	}
	return floor.IntPart()
}
