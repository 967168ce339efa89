package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/braincreator/flow-masters-commerce/config"
	"github.com/braincreator/flow-masters-commerce/core/cart"
	"github.com/braincreator/flow-masters-commerce/core/product"
	"github.com/braincreator/flow-masters-commerce/core/user"
	"github.com/braincreator/flow-masters-commerce/database"
	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/jmoiron/sqlx"
)

var (
	ErrEmptyCart = errors.New("no items to checkout")

	// ErrCustomerRequired marks a bookable order with no way to identify
	// the requester: booking and waiting-list records need a customer.
	ErrCustomerRequired = errors.New("an email is required to book this service")

	ErrMixedCurrency = errors.New("order lines mix currencies")
)

// FromService converts a direct service selection into a pending order
// with locale-aware price snapshots and a fresh order number.
func FromService(ctx context.Context, db *sqlx.DB, locales config.Locale, serviceID string, locale string, userID string, email string) (Order, error) {
	prd, err := product.Fetch(ctx, db, serviceID)
	if err != nil {
		return Order{}, err
	}
	if !prd.Active || !prd.Kind.Bookable() {
		return Order{}, product.ErrNotFound
	}

	if userID == "" && email == "" {
		return Order{}, ErrCustomerRequired
	}

	var ord Order
	err = database.Transaction(db, func(tx sqlx.ExtContext) error {
		customer, err := resolveCustomer(ctx, tx, userID, email)
		if err != nil {
			return err
		}

		price, err := product.FetchPrice(ctx, tx, prd.ID, locale, locales.Default)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		ord = Order{
			ID:        validate.GenerateID(),
			Number:    Number(PrefixFor(prd.Kind)),
			UserID:    customer,
			Status:    Pending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, tx, ord); err != nil {
			return err
		}

		it := Item{
			OrderID:   ord.ID,
			ProductID: prd.ID,
			Title:     prd.Title,
			Quantity:  1,
			UnitPrice: price.Amount,
			Currency:  price.Currency,
		}
		if err := CreateItem(ctx, tx, it); err != nil {
			return err
		}
		ord.Items = append(ord.Items, it)

		totals, err := snapshotTotals(ctx, tx, ord.ID, ord.Items, locales, locale)
		if err != nil {
			return err
		}
		ord.Totals = totals

		return nil
	})
	if err != nil {
		return Order{}, err
	}

	return ord, nil
}

// FromCart converts the owner's open cart into a pending order, copying
// every line at its captured price and closing the cart in the same
// transaction so it can never produce a second order.
func FromCart(ctx context.Context, db *sqlx.DB, locales config.Locale, owner cart.Owner, locale string, email string) (Order, error) {
	crt, err := cart.Fetch(ctx, db, owner)
	if err != nil {
		return Order{}, err
	}
	if len(crt.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	kinds := make([]product.Kind, 0, len(crt.Items))
	titles := make(map[string]string, len(crt.Items))
	bookable := false
	for _, it := range crt.Items {
		prd, err := product.Fetch(ctx, db, it.ProductID)
		if err != nil {
			return Order{}, err
		}
		kinds = append(kinds, prd.Kind)
		titles[it.ProductID] = prd.Title
		if prd.Kind.Bookable() {
			bookable = true
		}
	}

	// Bookable lines need a customer for the booking and waiting-list
	// records, same as a direct service order.
	if bookable && owner.UserID == "" && email == "" {
		return Order{}, ErrCustomerRequired
	}

	var ord Order
	err = database.Transaction(db, func(tx sqlx.ExtContext) error {
		customer, err := resolveCustomer(ctx, tx, owner.UserID, email)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		ord = Order{
			ID:        validate.GenerateID(),
			Number:    Number(PrefixFor(kinds...)),
			UserID:    customer,
			Status:    Pending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, tx, ord); err != nil {
			return err
		}

		for _, ci := range crt.Items {
			it := Item{
				OrderID:   ord.ID,
				ProductID: ci.ProductID,
				Title:     titles[ci.ProductID],
				Quantity:  ci.Quantity,
				UnitPrice: ci.UnitPrice,
				Currency:  ci.Currency,
			}
			if err := CreateItem(ctx, tx, it); err != nil {
				return err
			}
			ord.Items = append(ord.Items, it)
		}

		totals, err := snapshotTotals(ctx, tx, ord.ID, ord.Items, locales, locale)
		if err != nil {
			return err
		}
		ord.Totals = totals

		return cart.MarkConverted(ctx, tx, crt.ID)
	})
	if err != nil {
		return Order{}, err
	}

	return ord, nil
}

// snapshotTotals captures the order's money amounts at creation time.
// The request locale's total is summed from the order's own line
// snapshots, so it can never disagree with the items; the default locale
// gets a rendition from the catalog's localized prices.
func snapshotTotals(ctx context.Context, tx sqlx.ExtContext, orderID string, items []Item, locales config.Locale, requested string) ([]Total, error) {
	primary := locales.Resolve(requested)

	var subtotal int64
	var currency string
	for _, it := range items {
		if currency != "" && currency != it.Currency {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedCurrency, currency, it.Currency)
		}
		currency = it.Currency
		subtotal += it.UnitPrice * it.Quantity
	}

	totals := []Total{{
		OrderID:  orderID,
		Locale:   primary,
		Subtotal: subtotal,
		Total:    subtotal,
		Currency: currency,
	}}
	if err := CreateTotal(ctx, tx, totals[0]); err != nil {
		return nil, err
	}

	if primary == locales.Default {
		return totals, nil
	}

	var defSubtotal int64
	var defCurrency string
	for _, it := range items {
		price, err := product.FetchPrice(ctx, tx, it.ProductID, locales.Default, locales.Default)
		if err != nil {
			return nil, err
		}
		if defCurrency != "" && defCurrency != price.Currency {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedCurrency, defCurrency, price.Currency)
		}
		defCurrency = price.Currency
		defSubtotal += price.Amount * it.Quantity
	}

	tot := Total{
		OrderID:  orderID,
		Locale:   locales.Default,
		Subtotal: defSubtotal,
		Total:    defSubtotal,
		Currency: defCurrency,
	}
	if err := CreateTotal(ctx, tx, tot); err != nil {
		return nil, err
	}

	return append(totals, tot), nil
}

func resolveCustomer(ctx context.Context, tx sqlx.ExtContext, userID string, email string) (sql.NullString, error) {
	if userID != "" {
		return sql.NullString{String: userID, Valid: true}, nil
	}

	if email == "" {
		// Anonymous order without an email: permitted, the customer link
		// stays unset.
		return sql.NullString{}, nil
	}

	usr, err := user.FindOrCreateGuest(ctx, tx, email)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("resolving guest customer: %w", err)
	}

	return sql.NullString{String: usr.ID, Valid: true}, nil
}
