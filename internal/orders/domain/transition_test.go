package domain_test

import (
	"errors"
	"testing"

	"github.com/dejobratic/orderflow/internal/orders/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.OrderStatus
		allowed  bool
	}{
		{domain.StatusCreated, domain.StatusConfirmed, true},
		{domain.StatusCreated, domain.StatusCancelled, true},
		{domain.StatusConfirmed, domain.StatusDelivered, true},
		{domain.StatusCreated, domain.StatusDelivered, false},
		{domain.StatusConfirmed, domain.StatusCancelled, false},
		{domain.StatusConfirmed, domain.StatusCreated, false},
		{domain.StatusCancelled, domain.StatusConfirmed, false},
		{domain.StatusDelivered, domain.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := domain.CanTransition(tt.from, tt.to); got != tt.allowed {
				t.Errorf("CanTransition() = %v, want %v", got, tt.allowed)
			}
		})
	}
}

func TestAuthorizationStatus(t *testing.T) {
	created := domain.Order{ID: "order-1", Status: domain.StatusCreated}

	tests := []struct {
		name    string
		order   domain.Order
		outcome domain.PaymentOutcome
		want    domain.OrderStatus
		wantErr error
	}{
		{
			name:    "confirmed payment confirms the order",
			order:   created,
			outcome: domain.PaymentConfirmed,
			want:    domain.StatusConfirmed,
		},
		{
			name:    "declined payment cancels the order",
			order:   created,
			outcome: domain.PaymentDeclined,
			want:    domain.StatusCancelled,
		},
		{
			name:    "unknown outcome is rejected",
			order:   created,
			outcome: "pending_review",
			wantErr: domain.ErrUnrecognizedPaymentOutcome,
		},
		{
			name:    "missing outcome is rejected",
			order:   created,
			outcome: "",
			wantErr: domain.ErrUnrecognizedPaymentOutcome,
		},
		{
			name:    "order that already left created cannot be authorized",
			order:   domain.Order{ID: "order-1", Status: domain.StatusDelivered},
			outcome: domain.PaymentConfirmed,
			wantErr: domain.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.AuthorizationStatus(tt.order, tt.outcome)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDeliveryStatus(t *testing.T) {
	t.Run("confirmed order is delivered", func(t *testing.T) {
		got, err := domain.DeliveryStatus(domain.Order{Status: domain.StatusConfirmed})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != domain.StatusDelivered {
			t.Errorf("expected delivered, got %s", got)
		}
	})

	t.Run("non confirmed order cannot be delivered", func(t *testing.T) {
		_, err := domain.DeliveryStatus(domain.Order{Status: domain.StatusCreated})
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}
