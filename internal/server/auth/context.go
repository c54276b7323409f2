package auth

import "context"

type claimsContextKey struct{}

// ContextWithClaims returns a child context carrying a copy of claims.
func ContextWithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, &claims)
}

// ClaimsFromContext returns the claims attached by the auth interceptor.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	if ctx == nil {
		return Claims{}, false
	}
	c, ok := ctx.Value(claimsContextKey{}).(*Claims)
	if !ok || c == nil {
		return Claims{}, false
	}
	return *c, true
}
