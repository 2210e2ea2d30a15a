package auth

import "context"

type ctxKey int

const principalKey ctxKey = iota

// ContextWithPrincipal stores the authenticated principal for the lifetime
// of one request.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the principal attached by the authorization
// middleware, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
