package server

import (
	"context"

	"github.com/jrsteele09/impact-portal/identity"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyIdentity stores the identity resolved by the session middleware
const ContextKeyIdentity ContextKey = "identity"

func withIdentity(ctx context.Context, id *identity.Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// IdentityFromContext returns the identity placed on the request by the session middleware
func IdentityFromContext(ctx context.Context) (*identity.Identity, bool) {
	id, ok := ctx.Value(ContextKeyIdentity).(*identity.Identity)
	return id, ok && id != nil
}
