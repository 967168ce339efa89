package payment

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/braincreator/flow-masters-commerce/core/order"
)

const testSecret = "s3cret"

func signedPayload(t *testing.T, p yoomoneyPayload) yoomoneyPayload {
	t.Helper()

	joined := strings.Join([]string{
		p.NotificationType, p.OperationID, p.Amount, p.Currency,
		p.Datetime, p.Sender, p.Codepro, testSecret, p.Label,
	}, "&")
	sum := sha1.Sum([]byte(joined))
	p.SHA1Hash = hex.EncodeToString(sum[:])

	return p
}

func postNotification(t *testing.T, p yoomoneyPayload) (Notification, error) {
	t.Helper()

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest("POST", "/payments/webhook/yoomoney", bytes.NewReader(b))
	return NewYooMoney(testSecret).Parse(r)
}

func TestYooMoneyAccepts(t *testing.T) {
	p := signedPayload(t, yoomoneyPayload{
		NotificationType: "p2p-incoming",
		OperationID:      "1234567",
		Amount:           "300.00",
		Currency:         "643",
		Datetime:         "2024-04-01T12:00:00Z",
		Sender:           "41001000040",
		Codepro:          "false",
		Label:            "8e9c1f6e-30ae-4a7b-9a52-6c1f0a3d2b11",
	})

	n, err := postNotification(t, p)
	if err != nil {
		t.Fatalf("expected notification to be accepted: %v", err)
	}

	if n.OrderID != p.Label {
		t.Fatalf("order id %q, want label %q", n.OrderID, p.Label)
	}
	if n.Status != order.Paid {
		t.Fatalf("status %q, want %q", n.Status, order.Paid)
	}
	if n.TransactionID != "1234567" {
		t.Fatalf("transaction id %q, want the operation id", n.TransactionID)
	}
}

func TestYooMoneyRejectsTampered(t *testing.T) {
	p := signedPayload(t, yoomoneyPayload{
		NotificationType: "p2p-incoming",
		OperationID:      "1234567",
		Amount:           "300.00",
		Currency:         "643",
		Datetime:         "2024-04-01T12:00:00Z",
		Sender:           "41001000040",
		Codepro:          "false",
		Label:            "8e9c1f6e-30ae-4a7b-9a52-6c1f0a3d2b11",
	})
	p.Amount = "1.00"

	if _, err := postNotification(t, p); !errors.Is(err, ErrVerification) {
		t.Fatalf("tampered amount must fail verification, got %v", err)
	}
}

func TestYooMoneyRejectsMalformed(t *testing.T) {
	r := httptest.NewRequest("POST", "/payments/webhook/yoomoney", strings.NewReader("{not json"))

	if _, err := NewYooMoney(testSecret).Parse(r); !errors.Is(err, ErrMalformed) {
		t.Fatalf("broken body must be malformed, got %v", err)
	}
}

func TestYooMoneyCodeproIsNotPaid(t *testing.T) {
	p := signedPayload(t, yoomoneyPayload{
		NotificationType: "p2p-incoming",
		OperationID:      "7654321",
		Amount:           "150.00",
		Currency:         "643",
		Datetime:         "2024-04-01T12:00:00Z",
		Sender:           "41001000040",
		Codepro:          "true",
		Label:            "8e9c1f6e-30ae-4a7b-9a52-6c1f0a3d2b11",
	})

	n, err := postNotification(t, p)
	if err != nil {
		t.Fatalf("expected notification to be accepted: %v", err)
	}

	if n.Status != order.Processing {
		t.Fatalf("protected payment mapped to %q, want %q", n.Status, order.Processing)
	}
}
