package product

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/braincreator/flow-masters-commerce/api/web"
	"github.com/braincreator/flow-masters-commerce/api/weberr"
	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prds, err := FetchAll(ctx, db)
		if err != nil {
			return fmt.Errorf("fetching products: %w", err)
		}

		return web.Respond(ctx, w, prds, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		prd, err := Fetch(ctx, db, productID)
		if err != nil {
			if err == ErrNotFound {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", productID, err)
		}

		return web.Respond(ctx, w, prd, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pn ProductNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding product: %w", err))
		}

		if err := validate.Check(pn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		now := time.Now().UTC()
		prd := Product{
			ID:          validate.GenerateID(),
			Kind:        pn.Kind,
			Title:       pn.Title,
			Description: pn.Description,
			Active:      true,
			Capacity:    pn.Capacity,
			StartTime:   pn.StartTime,
			CreatedAt:   now,
			UpdatedAt:   now,
			Version:     1,
		}

		for _, pr := range pn.Prices {
			prd.Prices = append(prd.Prices, Price{
				ProductID: prd.ID,
				Locale:    pr.Locale,
				Amount:    pr.Amount,
				Currency:  pr.Currency,
			})
		}

		if err := Create(ctx, db, prd); err != nil {
			return fmt.Errorf("creating product: %w", err)
		}

		return web.Respond(ctx, w, prd, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		var up ProductUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding product update: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		prd, err := Fetch(ctx, db, productID)
		if err != nil {
			if err == ErrNotFound {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", productID, err)
		}

		if up.Title != nil {
			prd.Title = *up.Title
		}
		if up.Description != nil {
			prd.Description = *up.Description
		}
		if up.Active != nil {
			prd.Active = *up.Active
		}
		if up.Capacity != nil {
			prd.Capacity = *up.Capacity
		}
		if up.StartTime != nil {
			prd.StartTime = up.StartTime
		}
		prd.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, prd); err != nil {
			return fmt.Errorf("updating product[%s]: %w", productID, err)
		}

		return web.Respond(ctx, w, prd, http.StatusOK)
	}
}
