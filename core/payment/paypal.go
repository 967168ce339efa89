package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/braincreator/flow-masters-commerce/core/order"
	"github.com/plutov/paypal/v4"
)

// Paypal verifies webhook events through the provider API and accepts
// completed capture events. The order id travels in the capture's custom
// field.
type Paypal struct {
	client    *paypal.Client
	webhookID string
}

func NewPaypal(client *paypal.Client, webhookID string) *Paypal {
	return &Paypal{client: client, webhookID: webhookID}
}

func (p *Paypal) Name() string { return "paypal" }

type paypalEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID       string `json:"id"`
		CustomID string `json:"custom_id"`
		Status   string `json:"status"`
	} `json:"resource"`
}

func (p *Paypal) Parse(r *http.Request) (Notification, error) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return Notification{}, fmt.Errorf("%w: cannot read the request body", ErrMalformed)
	}

	// The verification call consumes the body, restore it first.
	r.Body = io.NopCloser(bytes.NewReader(b))

	resp, err := p.client.VerifyWebhookSignature(r.Context(), r, p.webhookID)
	if err != nil {
		return Notification{}, fmt.Errorf("%w: %s", ErrVerification, err)
	}
	if resp.VerificationStatus != "SUCCESS" {
		return Notification{}, fmt.Errorf("%w: verification status %s", ErrVerification, resp.VerificationStatus)
	}

	var evt paypalEvent
	if err := json.Unmarshal(b, &evt); err != nil {
		return Notification{}, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	if evt.EventType != "PAYMENT.CAPTURE.COMPLETED" {
		return Notification{}, ErrSkip
	}

	if evt.Resource.CustomID == "" {
		return Notification{}, fmt.Errorf("%w: capture carries no order reference", ErrMalformed)
	}

	return Notification{
		OrderID:       evt.Resource.CustomID,
		Status:        order.Paid,
		TransactionID: evt.Resource.ID,
	}, nil
}
