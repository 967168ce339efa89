// Package claims carries the request identity resolved from the session.
package claims

import (
	"context"
	"errors"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Claims is the identity attached to a request once the session layer has
// resolved it. A zero Claims never enters the context: absence means the
// request is anonymous.
type Claims struct {
	UserID string
	Role   string
}

type ctxKey int

const key ctxKey = 1

func Set(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, key, c)
}

// Get returns the request identity, or an error for anonymous requests.
func Get(ctx context.Context) (Claims, error) {
	c, ok := ctx.Value(key).(Claims)
	if !ok {
		return Claims{}, errors.New("no identity in context")
	}
	return c, nil
}

func IsAdmin(ctx context.Context) bool {
	c, err := Get(ctx)
	return err == nil && c.Role == RoleAdmin
}
