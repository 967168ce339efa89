package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("product not found")

	// ErrNoPrice marks a product with no resolvable price for the
	// requested locale or the default fallback.
	ErrNoPrice = errors.New("product has no price for locale")
)

func Create(ctx context.Context, db sqlx.ExtContext, prd Product) error {
	const q = `
	INSERT INTO products (product_id, kind, title, description, active, capacity, start_time, created_at, updated_at, version)
	VALUES (:product_id, :kind, :title, :description, :active, :capacity, :start_time, :created_at, :updated_at, :version)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prd); err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}

	for _, pr := range prd.Prices {
		if err := UpsertPrice(ctx, db, pr); err != nil {
			return err
		}
	}

	return nil
}

func UpsertPrice(ctx context.Context, db sqlx.ExtContext, pr Price) error {
	const q = `
	INSERT INTO product_prices (product_id, locale, amount, currency)
	VALUES (:product_id, :locale, :amount, :currency)
	ON CONFLICT (product_id, locale)
	DO UPDATE SET amount = EXCLUDED.amount, currency = EXCLUDED.currency`

	if _, err := sqlx.NamedExecContext(ctx, db, q, pr); err != nil {
		return fmt.Errorf("upserting price: %w", err)
	}

	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, prd Product) error {
	const q = `
	UPDATE products SET
		title = :title,
		description = :description,
		active = :active,
		capacity = :capacity,
		start_time = :start_time,
		updated_at = :updated_at,
		version = version + 1
	WHERE product_id = :product_id AND version = :version`

	res, err := sqlx.NamedExecContext(ctx, db, q, prd)
	if err != nil {
		return fmt.Errorf("updating product[%s]: %w", prd.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, productID string) (Product, error) {
	const q = `SELECT * FROM products WHERE product_id = $1`

	var prd Product
	if err := sqlx.GetContext(ctx, db, &prd, q, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("selecting product[%s]: %w", productID, err)
	}

	const qp = `SELECT * FROM product_prices WHERE product_id = $1 ORDER BY locale`
	if err := sqlx.SelectContext(ctx, db, &prd.Prices, qp, productID); err != nil {
		return Product{}, fmt.Errorf("selecting prices of product[%s]: %w", productID, err)
	}

	return prd, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Product, error) {
	const q = `SELECT * FROM products WHERE active ORDER BY created_at DESC`

	prds := []Product{}
	if err := sqlx.SelectContext(ctx, db, &prds, q); err != nil {
		return nil, fmt.Errorf("selecting products: %w", err)
	}

	return prds, nil
}

// FetchPrice resolves the authoritative price of a product for a locale,
// falling back to the default locale when no localized entry exists.
func FetchPrice(ctx context.Context, db sqlx.ExtContext, productID string, locale string, fallback string) (Price, error) {
	const q = `
	SELECT * FROM product_prices
	WHERE product_id = $1 AND locale IN ($2, $3)
	ORDER BY (locale = $2) DESC
	LIMIT 1`

	var pr Price
	if err := sqlx.GetContext(ctx, db, &pr, q, productID, locale, fallback); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Price{}, ErrNoPrice
		}
		return Price{}, fmt.Errorf("selecting price of product[%s]: %w", productID, err)
	}

	return pr, nil
}

// FetchPrices returns the localized price rows of a product keyed by locale.
func FetchPrices(ctx context.Context, db sqlx.ExtContext, productID string) (map[string]Price, error) {
	const q = `SELECT * FROM product_prices WHERE product_id = $1`

	var rows []Price
	if err := sqlx.SelectContext(ctx, db, &rows, q, productID); err != nil {
		return nil, fmt.Errorf("selecting prices of product[%s]: %w", productID, err)
	}

	prices := make(map[string]Price, len(rows))
	for _, pr := range rows {
		prices[pr.Locale] = pr
	}

	return prices, nil
}
