package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/braincreator/flow-masters-commerce/api/web"
	"github.com/braincreator/flow-masters-commerce/api/weberr"
	"github.com/braincreator/flow-masters-commerce/config"
	"github.com/braincreator/flow-masters-commerce/core/booking"
	"github.com/braincreator/flow-masters-commerce/core/cart"
	"github.com/braincreator/flow-masters-commerce/core/claims"
	"github.com/braincreator/flow-masters-commerce/core/product"
	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/jmoiron/sqlx"
)

// HandleCheckout converts the caller's open cart into an order and runs
// the capacity check for every bookable line.
func HandleCheckout(db *sqlx.DB, locales config.Locale) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in CheckoutNew
		if err := web.Decode(w, r, &in); err != nil && !errors.Is(err, io.EOF) {
			return weberr.BadRequest(fmt.Errorf("decoding checkout: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		owner := cart.ResolveOwner(ctx, r)

		ord, err := FromCart(ctx, db, locales, owner, in.Locale, in.Email)
		if err != nil {
			return checkoutError(err)
		}

		if err := reserveBookables(ctx, db, ord); err != nil {
			return err
		}

		return web.Respond(ctx, w, ord, http.StatusCreated)
	}
}

// HandleServiceOrder initiates an order directly from a service or course
// selection, without a cart.
func HandleServiceOrder(db *sqlx.DB, locales config.Locale) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		serviceID := web.Param(r, "id")
		if err := validate.CheckID(serviceID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var in ServiceOrderNew
		if err := web.Decode(w, r, &in); err != nil && !errors.Is(err, io.EOF) {
			return weberr.BadRequest(fmt.Errorf("decoding service order: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var userID string
		if clm, err := claims.Get(ctx); err == nil {
			userID = clm.UserID
		}

		ord, err := FromService(ctx, db, locales, serviceID, in.Locale, userID, in.Email)
		if err != nil {
			return checkoutError(err)
		}

		if err := reserveBookables(ctx, db, ord); err != nil {
			return err
		}

		return web.Respond(ctx, w, ord, http.StatusCreated)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		orderID := web.Param(r, "id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		ord, err := Fetch(ctx, db, orderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching order[%s]: %w", orderID, err)
		}

		if !claims.IsAdmin(ctx) {
			clm, err := claims.Get(ctx)
			if err != nil || !ord.UserID.Valid || ord.UserID.String != clm.UserID {
				return weberr.NotFound(errors.New("order does not belong to the caller"))
			}
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

func reserveBookables(ctx context.Context, db *sqlx.DB, ord Order) error {
	for _, it := range ord.Items {
		prd, err := product.Fetch(ctx, db, it.ProductID)
		if err != nil {
			return fmt.Errorf("fetching product[%s] for booking: %w", it.ProductID, err)
		}

		if !prd.Kind.Bookable() {
			continue
		}

		if err := booking.Reserve(ctx, db, prd, ord.ID, ord.UserID.String); err != nil {
			return err
		}
	}

	return nil
}

func checkoutError(err error) error {
	switch {
	case errors.Is(err, cart.ErrNoCart), errors.Is(err, ErrEmptyCart):
		return weberr.NewError(err, ErrEmptyCart.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrCustomerRequired):
		return weberr.NewError(err, ErrCustomerRequired.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrMixedCurrency):
		return weberr.NewError(err, ErrMixedCurrency.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, product.ErrNotFound):
		return weberr.NotFound(err)
	case errors.Is(err, product.ErrNoPrice):
		return weberr.NewError(err, "the product has no price for this locale", http.StatusUnprocessableEntity)
	default:
		return fmt.Errorf("initiating order: %w", err)
	}
}
