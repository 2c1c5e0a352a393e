package payment

import (
	"context"
	"fmt"
	"time"

	"hotelops/pkg/logger"

	"github.com/stripe/stripe-go/v82"
)

const metadataBookingNumber = "booking_number"

type stripeGateway struct {
	client     *stripe.Client
	successURL string
	cancelURL  string
	timeout    time.Duration
	log        *logger.Logger
}

func NewStripeGateway(client *stripe.Client, successURL, cancelURL string, timeout time.Duration, log *logger.Logger) Gateway {
	return &stripeGateway{
		client:     client,
		successURL: successURL,
		cancelURL:  cancelURL,
		timeout:    timeout,
		log:        log,
	}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, bookingRef string, amount int64, currency string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionCreateParams{
		SuccessURL:        stripe.String(g.successURL),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(bookingRef),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Room booking %s", bookingRef)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{metadataBookingNumber: bookingRef},
	}
	if g.cancelURL != "" {
		params.CancelURL = stripe.String(g.cancelURL)
	}

	session, err := g.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	g.log.Info("Checkout session created", "booking_number", bookingRef, "session_id", session.ID)
	return &Session{ID: session.ID, URL: session.URL}, nil
}

func (g *stripeGateway) GetPaymentOutcome(ctx context.Context, sessionRef string) (*Status, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionRetrieveParams{}
	params.AddExpand("payment_intent")

	session, err := g.client.V1CheckoutSessions.Retrieve(ctx, sessionRef, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}

	status := &Status{}
	intentStatus := ""
	if session.PaymentIntent != nil {
		status.PaymentIntentID = session.PaymentIntent.ID
		intentStatus = string(session.PaymentIntent.Status)
	}
	status.Outcome = mapStatus(string(session.Status), string(session.PaymentStatus), intentStatus)

	return status, nil
}

func (g *stripeGateway) Refund(ctx context.Context, paymentIntentRef string) error {
	if paymentIntentRef == "" {
		return ErrNoPaymentIntent
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	refund, err := g.client.V1Refunds.Create(ctx, &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(paymentIntentRef),
	})
	if err != nil {
		return fmt.Errorf("create refund: %w", err)
	}

	g.log.Info("Refund created", "payment_intent_id", paymentIntentRef, "refund_id", refund.ID, "status", refund.Status)
	return nil
}

// mapStatus prefers the payment intent status and falls back to the
// session's own payment status when the intent is not expanded yet.
func mapStatus(sessionStatus, paymentStatus, intentStatus string) Outcome {
	switch stripe.PaymentIntentStatus(intentStatus) {
	case stripe.PaymentIntentStatusSucceeded:
		return OutcomeSucceeded
	case stripe.PaymentIntentStatusProcessing:
		return OutcomeProcessing
	case stripe.PaymentIntentStatusCanceled, stripe.PaymentIntentStatusRequiresPaymentMethod:
		return OutcomeFailed
	}

	if stripe.CheckoutSessionPaymentStatus(paymentStatus) == stripe.CheckoutSessionPaymentStatusPaid {
		return OutcomeSucceeded
	}
	if stripe.CheckoutSessionStatus(sessionStatus) == stripe.CheckoutSessionStatusExpired {
		return OutcomeFailed
	}
	return OutcomeOther
}
