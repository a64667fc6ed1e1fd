package auth

import (
	"context"

	"github.com/Dan9191/money-marathon/internal/models"
)

type ctxKey int

const claimsKey ctxKey = 1

func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey).(Claims)
	return c, ok
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// PrincipalFromContext returns the authenticated caller, if any
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return models.Principal{}, false
	}
	return c.Principal(), true
}
