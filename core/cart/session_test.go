package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/braincreator/flow-masters-commerce/core/claims"
)

func TestNewSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()

	id, err := NewSession(w, true)
	if err != nil {
		t.Fatal(err)
	}

	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(id) {
		t.Fatalf("session id %q is not 32 hex characters", id)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}

	c := cookies[0]
	if c.Name != SessionCookie {
		t.Fatalf("cookie name %q, want %q", c.Name, SessionCookie)
	}
	if c.Value != id {
		t.Fatalf("cookie value %q, want the session id %q", c.Value, id)
	}
	if !c.HttpOnly {
		t.Fatal("cookie must be http-only")
	}
	if !c.Secure {
		t.Fatal("cookie must be secure in production")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("same-site %v, want lax", c.SameSite)
	}
	if c.MaxAge != sessionMaxAge {
		t.Fatalf("max age %d, want %d", c.MaxAge, sessionMaxAge)
	}
}

func TestNewSessionInsecureOutsideProduction(t *testing.T) {
	w := httptest.NewRecorder()

	if _, err := NewSession(w, false); err != nil {
		t.Fatal(err)
	}

	if w.Result().Cookies()[0].Secure {
		t.Fatal("cookie must not require https in development")
	}
}

func TestResolveOwnerPrefersClaims(t *testing.T) {
	r := httptest.NewRequest("GET", "/cart", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "aaaabbbbccccddddaaaabbbbccccdddd"})

	ctx := claims.Set(context.Background(), claims.Claims{UserID: "user-1", Role: claims.RoleUser})

	own := ResolveOwner(ctx, r)
	if own.UserID != "user-1" {
		t.Fatalf("owner user %q, want the authenticated user", own.UserID)
	}
	if own.SessionID != "" {
		t.Fatal("authenticated requests must not fall back to the cookie")
	}
	if own.Anonymous() {
		t.Fatal("owner with a user id is not anonymous")
	}
}

func TestResolveOwnerAnonymous(t *testing.T) {
	r := httptest.NewRequest("GET", "/cart", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "aaaabbbbccccddddaaaabbbbccccdddd"})

	own := ResolveOwner(context.Background(), r)
	if !own.Anonymous() {
		t.Fatal("request without claims is anonymous")
	}
	if own.SessionID != "aaaabbbbccccddddaaaabbbbccccdddd" {
		t.Fatalf("session id %q, want the cookie value", own.SessionID)
	}
}

func TestResolveOwnerEmpty(t *testing.T) {
	r := httptest.NewRequest("GET", "/cart", nil)

	own := ResolveOwner(context.Background(), r)
	if !own.Empty() {
		t.Fatal("no claims and no cookie means an empty owner")
	}
}

func TestSubtotal(t *testing.T) {
	c := Cart{Items: []Item{
		{ProductID: "a", Quantity: 2, UnitPrice: 1500},
		{ProductID: "b", Quantity: 1, UnitPrice: 300000},
	}}

	if got := c.Subtotal(); got != 303000 {
		t.Fatalf("subtotal %d, want 303000", got)
	}
}
