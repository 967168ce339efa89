package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/braincreator/flow-masters-commerce/core/order"
)

type Mailer struct {
	address string
	auth    smtp.Auth
	host    string
	port    string
	sender  string
}

func New(address string, password string, host string, port string, sender string) *Mailer {
	return &Mailer{
		address: address,
		auth:    smtp.PlainAuth("", address, password, host),
		host:    host,
		port:    port,
		sender:  sender,
	}
}

// SendPaymentConfirmation mails the order summary: number, line items and
// per-locale totals.
func (m *Mailer) SendPaymentConfirmation(to string, ord order.Order) error {
	var body strings.Builder

	fmt.Fprintf(&body, "Subject: Payment received for order %s\r\n", order.DisplayNumber(ord.Number))
	fmt.Fprintf(&body, "From: %s\r\nTo: %s\r\n\r\n", m.sender, to)

	fmt.Fprintf(&body, "Thank you! We have received your payment for order %s.\r\n\r\n", ord.Number)
	for _, it := range ord.Items {
		fmt.Fprintf(&body, "  %s x%d: %d %s\r\n", it.Title, it.Quantity, it.UnitPrice*it.Quantity, it.Currency)
	}
	body.WriteString("\r\n")
	for _, tot := range ord.Totals {
		fmt.Fprintf(&body, "Total (%s): %d %s\r\n", tot.Locale, tot.Total, tot.Currency)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, m.auth, m.address, []string{to}, []byte(body.String())); err != nil {
		return fmt.Errorf("sending confirmation to %s: %w", to, err)
	}

	return nil
}
