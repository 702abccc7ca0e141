package payments_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejobratic/orderflow/internal/orders/adapters/payments"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	"github.com/dejobratic/orderflow/internal/orders/ports"
)

func TestClientAuthorize(t *testing.T) {
	request := ports.PaymentRequest{
		UserID:             "user-1",
		PaymentMethodToken: "tok_visa",
		Amount:             decimal.RequireFromString("12.50"),
	}

	t.Run("sends the charge and relays the outcome", func(t *testing.T) {
		var got map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/payments", r.URL.Path)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"pay-1","status":"confirmed"}`))
		}))
		defer server.Close()

		client := payments.NewClient(server.URL+"/", time.Second)

		outcome, err := client.Authorize(context.Background(), request)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentConfirmed, outcome)

		assert.Equal(t, "user-1", got["userId"])
		assert.Equal(t, "tok_visa", got["paymentMethod"])
		assert.InDelta(t, 12.5, got["amount"], 0.0001)
	})

	t.Run("relays unknown outcomes verbatim", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"pay-2","status":"pending_review"}`))
		}))
		defer server.Close()

		outcome, err := payments.NewClient(server.URL, time.Second).Authorize(context.Background(), request)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentOutcome("pending_review"), outcome)
	})

	t.Run("non-2xx responses are gateway failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := payments.NewClient(server.URL, time.Second).Authorize(context.Background(), request)
		require.ErrorIs(t, err, ports.ErrGatewayUnavailable)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("malformed bodies are gateway failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		_, err := payments.NewClient(server.URL, time.Second).Authorize(context.Background(), request)
		require.ErrorIs(t, err, ports.ErrGatewayUnavailable)
	})

	t.Run("unreachable service is a gateway failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := payments.NewClient(url, time.Second).Authorize(context.Background(), request)
		require.ErrorIs(t, err, ports.ErrGatewayUnavailable)
	})

	t.Run("sends a single request per call", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := payments.NewClient(server.URL, time.Second).Authorize(context.Background(), request)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
