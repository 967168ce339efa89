package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/braincreator/flow-masters-commerce/api/background"
	"github.com/braincreator/flow-masters-commerce/api/middleware"
	"github.com/braincreator/flow-masters-commerce/api/web"
	"github.com/braincreator/flow-masters-commerce/config"
	"github.com/braincreator/flow-masters-commerce/core/auth"
	"github.com/braincreator/flow-masters-commerce/core/booking"
	"github.com/braincreator/flow-masters-commerce/core/cart"
	"github.com/braincreator/flow-masters-commerce/core/order"
	"github.com/braincreator/flow-masters-commerce/core/payment"
	"github.com/braincreator/flow-masters-commerce/core/product"
	"github.com/braincreator/flow-masters-commerce/core/user"
	"github.com/braincreator/flow-masters-commerce/rate"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	DB         *sqlx.DB
	Session    *scs.SessionManager
	Mailer     payment.Mailer
	Background *background.Background
	Providers  map[string]payment.Provider
	Locales    config.Locale
	Limiter    *rate.Limiter
	Production bool
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)
	limited := middleware.RateLimit(cfg.Limiter)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session), limited)
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session), limited)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)

	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/products", product.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/products/{id}", product.HandleUpdate(cfg.DB), admin)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.DB))
	a.Handle(http.MethodDelete, "/cart", cart.HandleClear(cfg.DB))
	a.Handle(http.MethodPut, "/cart/items", cart.HandleAddItem(cfg.DB, cfg.Locales, cfg.Production))
	a.Handle(http.MethodPut, "/cart/items/{product_id}", cart.HandleUpdateItem(cfg.DB))
	a.Handle(http.MethodDelete, "/cart/items/{product_id}", cart.HandleDeleteItem(cfg.DB))

	a.Handle(http.MethodPost, "/orders/checkout", order.HandleCheckout(cfg.DB, cfg.Locales))
	a.Handle(http.MethodPost, "/orders/services/{id}", order.HandleServiceOrder(cfg.DB, cfg.Locales))
	a.Handle(http.MethodGet, "/orders/{id}/booking", booking.HandleShowByOrder(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders/{id}", order.HandleShow(cfg.DB))

	a.Handle(http.MethodGet, "/waitlist/{product_id}", booking.HandleWaitlist(cfg.DB), admin)

	a.Handle(http.MethodPost, "/payments/webhook/{provider}",
		payment.HandleWebhook(cfg.DB, cfg.Providers, cfg.Mailer, cfg.Background), limited)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
