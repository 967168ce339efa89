package payment

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/braincreator/flow-masters-commerce/core/order"
)

// YooMoney verifies wallet notifications by the documented SHA-1 digest
// over the ordered field list, with the shop secret spliced in before the
// label.
type YooMoney struct {
	secret string
}

func NewYooMoney(secret string) *YooMoney {
	return &YooMoney{secret: secret}
}

func (y *YooMoney) Name() string { return "yoomoney" }

type yoomoneyPayload struct {
	NotificationType string `json:"notification_type"`
	OperationID      string `json:"operation_id"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	Datetime         string `json:"datetime"`
	Sender           string `json:"sender"`
	Codepro          string `json:"codepro"`
	Label            string `json:"label"`
	SHA1Hash         string `json:"sha1_hash"`
}

func (y *YooMoney) Parse(r *http.Request) (Notification, error) {
	var p yoomoneyPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return Notification{}, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	if !y.verify(p) {
		return Notification{}, ErrVerification
	}

	if p.Label == "" {
		return Notification{}, fmt.Errorf("%w: notification carries no order label", ErrMalformed)
	}

	// codepro=true means the money is locked behind a protection code and
	// not actually received yet.
	status := order.Paid
	if p.Codepro == "true" {
		status = order.Processing
	}

	return Notification{
		OrderID:       p.Label,
		Status:        status,
		TransactionID: p.OperationID,
	}, nil
}

func (y *YooMoney) verify(p yoomoneyPayload) bool {
	joined := strings.Join([]string{
		p.NotificationType,
		p.OperationID,
		p.Amount,
		p.Currency,
		p.Datetime,
		p.Sender,
		p.Codepro,
		y.secret,
		p.Label,
	}, "&")

	sum := sha1.Sum([]byte(joined))
	digest := hex.EncodeToString(sum[:])

	return subtle.ConstantTimeCompare([]byte(digest), []byte(strings.ToLower(p.SHA1Hash))) == 1
}
