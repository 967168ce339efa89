package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/braincreator/flow-masters-commerce/api/web"
	"github.com/braincreator/flow-masters-commerce/core/claims"
	"github.com/braincreator/flow-masters-commerce/random"
)

// SessionCookie carries the anonymous cart identity: a random 32-hex id
// valid for 30 days.
const SessionCookie = "cart_session"

const sessionIDLength = 32

const sessionMaxAge = 30 * 24 * 60 * 60

// ResolveOwner derives the cart identity of the request: the logged-in
// user when present, else the anonymous session cookie.
func ResolveOwner(ctx context.Context, r *http.Request) Owner {
	if clm, err := claims.Get(ctx); err == nil {
		return Owner{UserID: clm.UserID}
	}
	return Owner{SessionID: web.Cookie(r, SessionCookie)}
}

// NewSession assigns a fresh anonymous session id and sets its cookie on
// the response.
func NewSession(w http.ResponseWriter, production bool) (string, error) {
	id, err := random.Hex(sessionIDLength)
	if err != nil {
		return "", fmt.Errorf("generating cart session id: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	})

	return id, nil
}
