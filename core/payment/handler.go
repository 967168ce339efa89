package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/braincreator/flow-masters-commerce/api/background"
	"github.com/braincreator/flow-masters-commerce/api/web"
	"github.com/braincreator/flow-masters-commerce/api/weberr"
	"github.com/braincreator/flow-masters-commerce/core/order"
	"github.com/braincreator/flow-masters-commerce/core/user"
	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/jmoiron/sqlx"
)

// Mailer dispatches the payment confirmation. Failures never fail the
// webhook: the order state change has already been committed.
type Mailer interface {
	SendPaymentConfirmation(to string, ord order.Order) error
}

type webhookResponse struct {
	Success bool `json:"success"`
}

// HandleWebhook reconciles asynchronous payment-provider callbacks into
// order state.
func HandleWebhook(db *sqlx.DB, providers map[string]Provider, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := providers[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(fmt.Errorf("unknown payment provider %q", web.Param(r, "provider")))
		}

		n, err := prov.Parse(r)
		if err != nil {
			switch {
			case errors.Is(err, ErrSkip):
				return web.Respond(ctx, w, webhookResponse{Success: true}, http.StatusOK)
			case errors.Is(err, ErrVerification):
				return weberr.NewError(err, "notification verification failed", http.StatusForbidden)
			default:
				return weberr.BadRequest(err)
			}
		}

		if err := validate.CheckID(n.OrderID); err != nil {
			return weberr.NotFound(fmt.Errorf("notification references malformed order id: %w", err))
		}

		ord, err := order.Fetch(ctx, db, n.OrderID)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching order[%s]: %w", n.OrderID, err)
		}

		wasPaid := ord.Status == order.Paid

		now := time.Now().UTC()
		up := order.StatusUp{
			ID:        ord.ID,
			Status:    n.Status,
			UpdatedAt: now,
		}
		if n.TransactionID != "" {
			up.TransactionID = sql.NullString{String: n.TransactionID, Valid: true}
		}
		if n.Status == order.Paid {
			up.PaidAt = sql.NullTime{Time: now, Valid: true}
		}

		if err := order.UpdateStatus(ctx, db, up); err != nil {
			return fmt.Errorf("reconciling order[%s] from provider[%s]: %w", ord.ID, prov.Name(), err)
		}

		if n.Status == order.Paid && !wasPaid {
			dispatchConfirmation(db, mailer, bg, ord)
		}

		return web.Respond(ctx, w, webhookResponse{Success: true}, http.StatusOK)
	}
}

// dispatchConfirmation queues the confirmation email. It runs detached
// from the request: the webhook response must not wait on, or fail with,
// the mail dispatch.
func dispatchConfirmation(db *sqlx.DB, mailer Mailer, bg *background.Background, ord order.Order) {
	if mailer == nil || !ord.UserID.Valid {
		return
	}

	bg.Add(func() error {
		usr, err := user.Fetch(context.Background(), db, ord.UserID.String)
		if err != nil {
			return fmt.Errorf("resolving recipient of order[%s] confirmation: %w", ord.ID, err)
		}

		if err := mailer.SendPaymentConfirmation(usr.Email, ord); err != nil {
			return fmt.Errorf("sending confirmation for order[%s]: %w", ord.ID, err)
		}
		return nil
	})
}
