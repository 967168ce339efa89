package payment

import (
	"errors"
	"net/http"

	"github.com/braincreator/flow-masters-commerce/core/order"
)

var (
	// ErrMalformed marks a payload the provider parser could not read.
	ErrMalformed = errors.New("malformed payment notification")

	// ErrVerification marks a notification failing the authenticity
	// check. Always a hard abort, no state change.
	ErrVerification = errors.New("payment notification failed verification")

	// ErrSkip marks an authentic notification that carries no state
	// transition for this core (wrong event type, non-payment mode).
	ErrSkip = errors.New("notification carries no order update")
)

// Notification is the normalized outcome of a provider callback.
type Notification struct {
	OrderID       string
	Status        order.Status
	TransactionID string
}

// Provider parses and authenticates the callbacks of one payment
// provider into normalized notifications.
type Provider interface {
	Name() string
	Parse(r *http.Request) (Notification, error)
}

// Providers keys a set of providers by name for webhook routing.
func Providers(provs ...Provider) map[string]Provider {
	m := make(map[string]Provider, len(provs))
	for _, p := range provs {
		m[p.Name()] = p
	}
	return m
}
