// Package payment talks to the card payment provider on behalf of bookings.
package payment

import (
	"context"
	"errors"
)

type Outcome string

const (
	OutcomeSucceeded  Outcome = "succeeded"
	OutcomeProcessing Outcome = "processing"
	OutcomeFailed     Outcome = "failed"
	OutcomeOther      Outcome = "other"
)

// Settled reports whether the outcome moves a pending booking to active.
func (o Outcome) Settled() bool {
	return o == OutcomeSucceeded || o == OutcomeProcessing
}

type Session struct {
	ID  string
	URL string
}

type Status struct {
	Outcome         Outcome
	PaymentIntentID string
}

var ErrNoPaymentIntent = errors.New("payment has no payment intent")

// Gateway is the contract the booking lifecycle needs from a payment provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, bookingRef string, amount int64, currency string) (*Session, error)
	GetPaymentOutcome(ctx context.Context, sessionRef string) (*Status, error)
	Refund(ctx context.Context, paymentIntentRef string) error
}
