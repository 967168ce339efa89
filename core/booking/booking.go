package booking

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking is the confirmed reservation linking an order to a schedulable
// resource. At most one exists per order.
type Booking struct {
	ID        string     `json:"id" db:"booking_id"`
	OrderID   string     `json:"orderId" db:"order_id"`
	ProductID string     `json:"productId" db:"product_id"`
	Title     string     `json:"title" db:"title"`
	Type      string     `json:"type" db:"btype"`
	Status    string     `json:"status" db:"status"`
	StartTime *time.Time `json:"startTime" db:"start_time"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// WaitlistEntry records a user who could not be confirmed because the
// resource was full. At most one exists per (user, product) pair.
type WaitlistEntry struct {
	ID        string    `json:"id" db:"entry_id"`
	UserID    string    `json:"userId" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Notified  bool      `json:"notified" db:"notified"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
