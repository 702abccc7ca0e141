// Package payments talks to the remote payment service over HTTP.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

const maxErrorBody = 512

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a gateway for the payment service rooted at baseURL.
// Each authorization call is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type authorizeRequest struct {
	UserID        string      `json:"userId"`
	PaymentMethod string      `json:"paymentMethod"`
	Amount        json.Number `json:"amount"`
}

type authorizeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Authorize submits a single charge and relays the outcome the service
// returns, even when it is neither confirmed nor declined.
func (c *Client) Authorize(ctx context.Context, req ports.PaymentRequest) (domain.PaymentOutcome, error) {
	body, err := json.Marshal(authorizeRequest{
		UserID:        req.UserID,
		PaymentMethod: req.PaymentMethodToken,
		Amount:        json.Number(req.Amount.String()),
	})
	if err != nil {
		return "", fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ports.ErrGatewayUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ports.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: status %d: %s", ports.ErrGatewayUnavailable, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload authorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ports.ErrGatewayUnavailable, err)
	}

	return domain.PaymentOutcome(payload.Status), nil
}
