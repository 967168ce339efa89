package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/braincreator/flow-masters-commerce/api/web"
	"github.com/braincreator/flow-masters-commerce/api/weberr"
	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShowByOrder(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		orderID := web.Param(r, "id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		bk, err := FetchByOrder(ctx, db, orderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching booking of order[%s]: %w", orderID, err)
		}

		return web.Respond(ctx, w, bk, http.StatusOK)
	}
}

func HandleWaitlist(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		entries, err := FetchWaitlist(ctx, db, productID)
		if err != nil {
			return fmt.Errorf("fetching waitlist of product[%s]: %w", productID, err)
		}

		return web.Respond(ctx, w, entries, http.StatusOK)
	}
}
