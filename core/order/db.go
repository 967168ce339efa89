package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("order not found")

func Create(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	const q = `
	INSERT INTO orders (order_id, order_number, user_id, status, transaction_id, paid_at, created_at, updated_at)
	VALUES (:order_id, :order_number, :user_id, :status, :transaction_id, :paid_at, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ord); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO order_items (order_id, product_id, title, quantity, unit_price, currency)
	VALUES (:order_id, :product_id, :title, :quantity, :unit_price, :currency)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		return fmt.Errorf("inserting order item: %w", err)
	}

	return nil
}

func CreateTotal(ctx context.Context, db sqlx.ExtContext, tot Total) error {
	const q = `
	INSERT INTO order_totals (order_id, locale, subtotal, total, currency)
	VALUES (:order_id, :locale, :subtotal, :total, :currency)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, tot); err != nil {
		return fmt.Errorf("inserting order total: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, orderID string) (Order, error) {
	const q = `SELECT * FROM orders WHERE order_id = $1`

	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("selecting order[%s]: %w", orderID, err)
	}

	const qi = `SELECT * FROM order_items WHERE order_id = $1 ORDER BY product_id`
	if err := sqlx.SelectContext(ctx, db, &ord.Items, qi, orderID); err != nil {
		return Order{}, fmt.Errorf("selecting items of order[%s]: %w", orderID, err)
	}

	const qt = `SELECT * FROM order_totals WHERE order_id = $1 ORDER BY locale`
	if err := sqlx.SelectContext(ctx, db, &ord.Totals, qt, orderID); err != nil {
		return Order{}, fmt.Errorf("selecting totals of order[%s]: %w", orderID, err)
	}

	return ord, nil
}

func UpdateStatus(ctx context.Context, db sqlx.ExtContext, up StatusUp) error {
	const q = `
	UPDATE orders SET
		status = :status,
		transaction_id = COALESCE(:transaction_id, transaction_id),
		paid_at = COALESCE(paid_at, :paid_at),
		updated_at = :updated_at
	WHERE order_id = :order_id`

	res, err := sqlx.NamedExecContext(ctx, db, q, up)
	if err != nil {
		return fmt.Errorf("updating status of order[%s]: %w", up.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}
