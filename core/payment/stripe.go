package payment

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/braincreator/flow-masters-commerce/core/order"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// Stripe turns checkout.session.completed events into paid-order
// notifications. The order id travels in the session client reference.
type Stripe struct {
	webhookSecret string
}

func NewStripe(webhookSecret string) *Stripe {
	return &Stripe{webhookSecret: webhookSecret}
}

func (s *Stripe) Name() string { return "stripe" }

func (s *Stripe) Parse(r *http.Request) (Notification, error) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return Notification{}, fmt.Errorf("%w: cannot read the request body", ErrMalformed)
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		return Notification{}, fmt.Errorf("%w: event is not signed", ErrVerification)
	}

	event, err := webhook.ConstructEvent(b, sig, s.webhookSecret)
	if err != nil {
		return Notification{}, fmt.Errorf("%w: %s", ErrVerification, err)
	}

	if event.Type != "checkout.session.completed" {
		return Notification{}, ErrSkip
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return Notification{}, fmt.Errorf("%w: unable to decode stripe event: %s", ErrMalformed, err)
	}

	if session.Mode != stripe.CheckoutSessionModePayment {
		return Notification{}, ErrSkip
	}

	if session.ClientReferenceID == "" {
		return Notification{}, fmt.Errorf("%w: session carries no order reference", ErrMalformed)
	}

	txID := session.ID
	if session.PaymentIntent != nil {
		txID = session.PaymentIntent.ID
	}

	return Notification{
		OrderID:       session.ClientReferenceID,
		Status:        order.Paid,
		TransactionID: txID,
	}, nil
}
