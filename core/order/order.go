package order

import (
	"database/sql"
	"time"
)

type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Paid       Status = "paid"
	Cancelled  Status = "cancelled"
	Refunded   Status = "refunded"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case Pending, Processing, Paid, Cancelled, Refunded:
		return Status(s), true
	}
	return "", false
}

// Order is an immutable-price snapshot of what the customer committed to
// buy, tracked through its payment status.
type Order struct {
	ID            string         `json:"id" db:"order_id"`
	Number        string         `json:"orderNumber" db:"order_number"`
	UserID        sql.NullString `json:"-" db:"user_id"`
	Status        Status         `json:"status" db:"status"`
	TransactionID sql.NullString `json:"-" db:"transaction_id"`
	PaidAt        sql.NullTime   `json:"-" db:"paid_at"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`
	Items         []Item         `json:"items" db:"-"`
	Totals        []Total        `json:"totals" db:"-"`
}

type Item struct {
	OrderID   string `json:"-" db:"order_id"`
	ProductID string `json:"productId" db:"product_id"`
	Title     string `json:"title" db:"title"`
	Quantity  int64  `json:"quantity" db:"quantity"`
	UnitPrice int64  `json:"unitPrice" db:"unit_price"`
	Currency  string `json:"currency" db:"currency"`
}

// Total is the money amount of the order in one locale, captured at
// creation time and never recomputed from the live catalog.
type Total struct {
	OrderID  string `json:"-" db:"order_id"`
	Locale   string `json:"locale" db:"locale"`
	Subtotal int64  `json:"subtotal" db:"subtotal"`
	Total    int64  `json:"total" db:"total"`
	Currency string `json:"currency" db:"currency"`
}

// StatusUp carries a reconciliation update. TransactionID and PaidAt are
// written only when valid.
type StatusUp struct {
	ID            string         `db:"order_id"`
	Status        Status         `db:"status"`
	TransactionID sql.NullString `db:"transaction_id"`
	PaidAt        sql.NullTime   `db:"paid_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type CheckoutNew struct {
	Email  string `json:"email" validate:"omitempty,email"`
	Locale string `json:"locale"`
}

type ServiceOrderNew struct {
	Email  string `json:"email" validate:"omitempty,email"`
	Locale string `json:"locale"`
}
