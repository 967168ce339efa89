package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("booking not found")

// Upsert confirms a booking for an order. A booking already bound to the
// order is updated in place, never duplicated.
func Upsert(ctx context.Context, db sqlx.ExtContext, bk Booking) error {
	const q = `
	INSERT INTO bookings (booking_id, order_id, product_id, title, btype, status, start_time, created_at, updated_at)
	VALUES (:booking_id, :order_id, :product_id, :title, :btype, :status, :start_time, :created_at, :updated_at)
	ON CONFLICT (order_id)
	DO UPDATE SET
		title = EXCLUDED.title,
		btype = EXCLUDED.btype,
		status = EXCLUDED.status,
		start_time = EXCLUDED.start_time,
		updated_at = EXCLUDED.updated_at`

	if _, err := sqlx.NamedExecContext(ctx, db, q, bk); err != nil {
		return fmt.Errorf("upserting booking for order[%s]: %w", bk.OrderID, err)
	}

	return nil
}

func FetchByOrder(ctx context.Context, db sqlx.ExtContext, orderID string) (Booking, error) {
	const q = `SELECT * FROM bookings WHERE order_id = $1`

	var bk Booking
	if err := sqlx.GetContext(ctx, db, &bk, q, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, fmt.Errorf("selecting booking of order[%s]: %w", orderID, err)
	}

	return bk, nil
}

// CountConfirmed returns the live number of active reservations held
// against a resource. Re-queried at every decision, never cached.
func CountConfirmed(ctx context.Context, db sqlx.ExtContext, productID string) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE product_id = $1 AND status = $2`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, productID, StatusConfirmed); err != nil {
		return 0, fmt.Errorf("counting bookings of product[%s]: %w", productID, err)
	}

	return n, nil
}

// AddWaitlist inserts a waiting-list entry, reporting false when the user
// is already on the list. The (user, product) unique key makes concurrent
// inserts collapse into one row.
func AddWaitlist(ctx context.Context, db sqlx.ExtContext, entry WaitlistEntry) (bool, error) {
	const q = `
	INSERT INTO waitlist (entry_id, user_id, product_id, notified, created_at)
	VALUES (:entry_id, :user_id, :product_id, :notified, :created_at)
	ON CONFLICT (user_id, product_id) DO NOTHING`

	res, err := sqlx.NamedExecContext(ctx, db, q, entry)
	if err != nil {
		return false, fmt.Errorf("inserting waitlist entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking waitlist insert: %w", err)
	}

	return n > 0, nil
}

func FetchWaitlist(ctx context.Context, db sqlx.ExtContext, productID string) ([]WaitlistEntry, error) {
	const q = `SELECT * FROM waitlist WHERE product_id = $1 ORDER BY created_at`

	entries := []WaitlistEntry{}
	if err := sqlx.SelectContext(ctx, db, &entries, q, productID); err != nil {
		return nil, fmt.Errorf("selecting waitlist of product[%s]: %w", productID, err)
	}

	return entries, nil
}
