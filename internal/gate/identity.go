package gate

import (
	"context"

	"github.com/mehmetcc/flightdesk/internal/user"
)

// Identity is the authenticated caller of a single request. It is derived
// from a validated token and lives only in that request's context.
type Identity struct {
	Subject     string
	UserID      string
	Role        user.Role
	DisplayName string
}

type contextKey int

const identityKey contextKey = iota

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached by the gate, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
