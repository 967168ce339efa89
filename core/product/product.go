package product

import "time"

// Kind tells what a catalog entry sells. Services and courses are
// bookable and may carry a capacity limit.
type Kind string

const (
	KindProduct      Kind = "product"
	KindService      Kind = "service"
	KindSubscription Kind = "subscription"
	KindCourse       Kind = "course"
)

func (k Kind) Bookable() bool {
	return k == KindService || k == KindCourse
}

type Product struct {
	ID          string     `json:"id" db:"product_id"`
	Kind        Kind       `json:"kind" db:"kind"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Active      bool       `json:"active" db:"active"`
	Capacity    int        `json:"capacity" db:"capacity"`
	StartTime   *time.Time `json:"startTime" db:"start_time"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	Version     int        `json:"-" db:"version"`
	Prices      []Price    `json:"prices" db:"-"`
}

// Price is the localized money amount of a product, in minor units.
type Price struct {
	ProductID string `json:"-" db:"product_id"`
	Locale    string `json:"locale" db:"locale"`
	Amount    int64  `json:"amount" db:"amount"`
	Currency  string `json:"currency" db:"currency"`
}

type ProductNew struct {
	Kind        Kind       `json:"kind" validate:"required,oneof=product service subscription course"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Capacity    int        `json:"capacity" validate:"gte=0"`
	StartTime   *time.Time `json:"startTime"`
	Prices      []PriceNew `json:"prices" validate:"required,min=1,dive"`
}

type PriceNew struct {
	Locale   string `json:"locale" validate:"required"`
	Amount   int64  `json:"amount" validate:"required,gte=0"`
	Currency string `json:"currency" validate:"required,len=3"`
}

type ProductUp struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Active      *bool      `json:"active"`
	Capacity    *int       `json:"capacity" validate:"omitempty,gte=0"`
	StartTime   *time.Time `json:"startTime"`
}
