package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/jmoiron/sqlx"
)

var ErrNoCart = errors.New("no open cart for this identity")

var ErrItemNotFound = errors.New("item not in cart")

// Fetch returns the most recently updated open cart of the owner, items
// included. Read-only.
func Fetch(ctx context.Context, db sqlx.ExtContext, owner Owner) (Cart, error) {
	if owner.Empty() {
		return Cart{}, ErrNoCart
	}

	const qUser = `
	SELECT * FROM carts WHERE user_id = $1 AND NOT converted
	ORDER BY updated_at DESC LIMIT 1`

	const qSession = `
	SELECT * FROM carts WHERE session_id = $1 AND NOT converted
	ORDER BY updated_at DESC LIMIT 1`

	q, key := qUser, owner.UserID
	if owner.Anonymous() {
		q, key = qSession, owner.SessionID
	}

	var crt Cart
	if err := sqlx.GetContext(ctx, db, &crt, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrNoCart
		}
		return Cart{}, fmt.Errorf("selecting cart: %w", err)
	}

	items, err := FetchItems(ctx, db, crt.ID)
	if err != nil {
		return Cart{}, err
	}
	crt.Items = items

	return crt, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, cartID string) ([]Item, error) {
	const q = `SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY created_at`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, db, &items, q, cartID); err != nil {
		return nil, fmt.Errorf("selecting items of cart[%s]: %w", cartID, err)
	}

	return items, nil
}

// Ensure returns the owner's open cart, creating one when absent. The
// partial unique indexes on carts make concurrent creates collapse into a
// single row: the losing insert hits the index and falls back to Fetch.
func Ensure(ctx context.Context, db sqlx.ExtContext, owner Owner) (Cart, error) {
	crt, err := Fetch(ctx, db, owner)
	if err == nil {
		return crt, nil
	}
	if !errors.Is(err, ErrNoCart) {
		return Cart{}, err
	}

	const qUser = `
	INSERT INTO carts (cart_id, user_id, converted, created_at, updated_at)
	VALUES ($1, $2, FALSE, $3, $3)
	ON CONFLICT (user_id) WHERE NOT converted AND user_id IS NOT NULL DO NOTHING`

	const qSession = `
	INSERT INTO carts (cart_id, session_id, converted, created_at, updated_at)
	VALUES ($1, $2, FALSE, $3, $3)
	ON CONFLICT (session_id) WHERE NOT converted AND session_id IS NOT NULL DO NOTHING`

	q, key := qUser, owner.UserID
	if owner.Anonymous() {
		q, key = qSession, owner.SessionID
	}

	now := time.Now().UTC()
	if _, err := db.ExecContext(ctx, q, validate.GenerateID(), key, now); err != nil {
		return Cart{}, fmt.Errorf("inserting cart: %w", err)
	}

	return Fetch(ctx, db, owner)
}

// UpsertItem merges a line into the cart: a line for the same product has
// its quantity incremented and its price snapshot refreshed, otherwise a
// new line is appended.
func UpsertItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, currency, created_at, updated_at)
	VALUES (:cart_id, :product_id, :quantity, :unit_price, :currency, :created_at, :updated_at)
	ON CONFLICT (cart_id, product_id)
	DO UPDATE SET
		quantity = cart_items.quantity + EXCLUDED.quantity,
		unit_price = EXCLUDED.unit_price,
		currency = EXCLUDED.currency,
		updated_at = EXCLUDED.updated_at`

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		return fmt.Errorf("upserting item into cart[%s]: %w", it.CartID, err)
	}

	return touch(ctx, db, it.CartID, it.UpdatedAt)
}

func UpdateItemQuantity(ctx context.Context, db sqlx.ExtContext, cartID string, productID string, quantity int64) error {
	const q = `
	UPDATE cart_items SET quantity = $3, updated_at = $4
	WHERE cart_id = $1 AND product_id = $2`

	now := time.Now().UTC()
	res, err := db.ExecContext(ctx, q, cartID, productID, quantity, now)
	if err != nil {
		return fmt.Errorf("updating item quantity in cart[%s]: %w", cartID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}

	return touch(ctx, db, cartID, now)
}

func DeleteItem(ctx context.Context, db sqlx.ExtContext, cartID string, productID string) error {
	const q = `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	res, err := db.ExecContext(ctx, q, cartID, productID)
	if err != nil {
		return fmt.Errorf("deleting item from cart[%s]: %w", cartID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}

	return touch(ctx, db, cartID, time.Now().UTC())
}

// Clear removes every line. Idempotent: clearing an empty cart is a no-op.
func Clear(ctx context.Context, db sqlx.ExtContext, cartID string) error {
	const q = `DELETE FROM cart_items WHERE cart_id = $1`

	if _, err := db.ExecContext(ctx, q, cartID); err != nil {
		return fmt.Errorf("clearing cart[%s]: %w", cartID, err)
	}

	return touch(ctx, db, cartID, time.Now().UTC())
}

// MarkConverted closes the cart. A converted cart never resolves for its
// owner again, so checkout must call this in the same transaction that
// creates the order.
func MarkConverted(ctx context.Context, db sqlx.ExtContext, cartID string) error {
	const q = `UPDATE carts SET converted = TRUE, updated_at = $2 WHERE cart_id = $1 AND NOT converted`

	res, err := db.ExecContext(ctx, q, cartID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("converting cart[%s]: %w", cartID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoCart
	}

	return nil
}

func touch(ctx context.Context, db sqlx.ExtContext, cartID string, now time.Time) error {
	const q = `UPDATE carts SET updated_at = $2 WHERE cart_id = $1`

	if _, err := db.ExecContext(ctx, q, cartID, now); err != nil {
		return fmt.Errorf("touching cart[%s]: %w", cartID, err)
	}

	return nil
}
