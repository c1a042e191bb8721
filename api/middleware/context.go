package middleware

import (
	"context"

	pkgauth "github.com/ratehub/ratehub-backend/pkg/auth"
)

type contextKey string

const (
	ctxPrincipal contextKey = "principal"
	ctxAccessID  contextKey = "access_id"
)

// PrincipalFromContext returns the authenticated identity seeded by Auth.
func PrincipalFromContext(ctx context.Context) (pkgauth.Principal, bool) {
	if ctx == nil {
		return pkgauth.Principal{}, false
	}
	p, ok := ctx.Value(ctxPrincipal).(pkgauth.Principal)
	return p, ok
}

// AccessIDFromContext returns the presented token's session identifier.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithPrincipal injects the authenticated identity into the context.
func WithPrincipal(ctx context.Context, p pkgauth.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}

// WithAccessID injects the token's session identifier into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}
