package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/braincreator/flow-masters-commerce/api/web"
	"github.com/braincreator/flow-masters-commerce/api/weberr"
	"github.com/braincreator/flow-masters-commerce/config"
	"github.com/braincreator/flow-masters-commerce/core/product"
	"github.com/braincreator/flow-masters-commerce/database"
	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		owner := ResolveOwner(ctx, r)

		crt, err := Fetch(ctx, db, owner)
		if err != nil {
			if errors.Is(err, ErrNoCart) {
				return web.Respond(ctx, w, Cart{Items: []Item{}}, http.StatusOK)
			}
			return fmt.Errorf("fetching cart: %w", err)
		}

		return web.Respond(ctx, w, crt, http.StatusOK)
	}
}

func HandleAddItem(db *sqlx.DB, locales config.Locale, production bool) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding item: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		owner := ResolveOwner(ctx, r)
		if owner.Empty() {
			id, err := NewSession(w, production)
			if err != nil {
				return err
			}
			owner.SessionID = id
		}

		locale := locales.Resolve(r.URL.Query().Get("locale"))

		prd, err := product.Fetch(ctx, db, in.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return unavailable(in.ProductID, err)
			}
			return fmt.Errorf("fetching product[%s]: %w", in.ProductID, err)
		}
		if !prd.Active {
			return unavailable(in.ProductID, errors.New("product is not active"))
		}

		price, err := product.FetchPrice(ctx, db, in.ProductID, locale, locales.Default)
		if err != nil {
			if errors.Is(err, product.ErrNoPrice) {
				return unavailable(in.ProductID, err)
			}
			return fmt.Errorf("fetching price of product[%s]: %w", in.ProductID, err)
		}

		var crt Cart
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			crt, err = Ensure(ctx, tx, owner)
			if err != nil {
				return fmt.Errorf("ensuring cart: %w", err)
			}

			now := time.Now().UTC()
			it := Item{
				CartID:    crt.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitPrice: price.Amount,
				Currency:  price.Currency,
				CreatedAt: now,
				UpdatedAt: now,
			}

			return UpsertItem(ctx, tx, it)
		})
		if err != nil {
			return fmt.Errorf("adding item to cart: %w", err)
		}

		crt, err = Fetch(ctx, db, owner)
		if err != nil {
			return fmt.Errorf("fetching updated cart: %w", err)
		}

		return web.Respond(ctx, w, crt, http.StatusOK)
	}
}

func HandleUpdateItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var in ItemUp
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding item update: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		owner := ResolveOwner(ctx, r)

		crt, err := Fetch(ctx, db, owner)
		if err != nil {
			if errors.Is(err, ErrNoCart) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching cart: %w", err)
		}

		if err := UpdateItemQuantity(ctx, db, crt.ID, productID, in.Quantity); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("updating item quantity: %w", err)
		}

		crt, err = Fetch(ctx, db, owner)
		if err != nil {
			return fmt.Errorf("fetching updated cart: %w", err)
		}

		return web.Respond(ctx, w, crt, http.StatusOK)
	}
}

func HandleDeleteItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		owner := ResolveOwner(ctx, r)

		crt, err := Fetch(ctx, db, owner)
		if err != nil {
			if errors.Is(err, ErrNoCart) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching cart: %w", err)
		}

		if err := DeleteItem(ctx, db, crt.ID, productID); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("deleting item: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleClear(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		owner := ResolveOwner(ctx, r)

		crt, err := Fetch(ctx, db, owner)
		if err != nil {
			if errors.Is(err, ErrNoCart) {
				return web.Respond(ctx, w, nil, http.StatusNoContent)
			}
			return fmt.Errorf("fetching cart: %w", err)
		}

		if err := Clear(ctx, db, crt.ID); err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func unavailable(productID string, err error) error {
	return weberr.NewError(
		fmt.Errorf("product[%s] unavailable: %w", productID, err),
		"the product is not available for purchase",
		http.StatusUnprocessableEntity,
	)
}
