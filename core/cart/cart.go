package cart

import (
	"database/sql"
	"time"
)

// Cart is the open line-item list of one identity. A cart belongs either
// to a logged-in user or to an anonymous session carried in a cookie, and
// closes for good once converted into an order.
type Cart struct {
	ID        string         `json:"id" db:"cart_id"`
	UserID    sql.NullString `json:"-" db:"user_id"`
	SessionID sql.NullString `json:"-" db:"session_id"`
	Converted bool           `json:"-" db:"converted"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
	Items     []Item         `json:"items" db:"-"`
}

type Item struct {
	CartID    string    `json:"-" db:"cart_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int64     `json:"quantity" db:"quantity"`
	UnitPrice int64     `json:"unitPrice" db:"unit_price"`
	Currency  string    `json:"currency" db:"currency"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type ItemNew struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

type ItemUp struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// Owner identifies who a cart belongs to. UserID wins when both are set.
type Owner struct {
	UserID    string
	SessionID string
}

func (o Owner) Anonymous() bool { return o.UserID == "" }

func (o Owner) Empty() bool { return o.UserID == "" && o.SessionID == "" }

func (c Cart) Subtotal() int64 {
	var tot int64
	for _, it := range c.Items {
		tot += it.UnitPrice * it.Quantity
	}
	return tot
}
