package domain

import (
	"errors"
	"fmt"
	"slices"
)

// PaymentOutcome is the verdict relayed by the payment gateway.
type PaymentOutcome string

const (
	PaymentConfirmed PaymentOutcome = "confirmed"
	PaymentDeclined  PaymentOutcome = "declined"
)

var (
	// ErrUnrecognizedPaymentOutcome is returned when the gateway answers with
	// neither confirmed nor declined.
	ErrUnrecognizedPaymentOutcome = errors.New("unrecognized payment outcome")
	// ErrInvalidTransition is returned when a pipeline step receives an order
	// in a status it cannot advance from.
	ErrInvalidTransition = errors.New("invalid status transition")
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusCreated:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusDelivered},
}

// CanTransition reports whether the state graph has an edge from -> to.
func CanTransition(from, to OrderStatus) bool {
	return slices.Contains(transitions[from], to)
}

// AuthorizationStatus returns the status an order moves to once the payment
// gateway has answered for it.
func AuthorizationStatus(order Order, outcome PaymentOutcome) (OrderStatus, error) {
	var next OrderStatus
	switch outcome {
	case PaymentConfirmed:
		next = StatusConfirmed
	case PaymentDeclined:
		next = StatusCancelled
	default:
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedPaymentOutcome, outcome)
	}

	return next, checkTransition(order.Status, next)
}

// DeliveryStatus returns the status a confirmed order moves to once its
// delivery lead time has elapsed.
func DeliveryStatus(order Order) (OrderStatus, error) {
	return StatusDelivered, checkTransition(order.Status, StatusDelivered)
}

func checkTransition(from, to OrderStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
