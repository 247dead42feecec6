package reqctx

import (
	"context"

	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

// AuthContext identifies the caller of an operation. Services receive it as
// an explicit argument; the context copy exists for logging and auditing.
type AuthContext struct {
	UserID int
	Role   authorize.Role
}

func (a AuthContext) IsZero() bool {
	return a.UserID == 0
}

func WithAuth(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, keyAuth, auth)
}

// AuthFromContext returns the caller set by the session middleware.
func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	auth, ok := ctx.Value(keyAuth).(AuthContext)
	if !ok || auth.IsZero() {
		return AuthContext{}, false
	}
	return auth, true
}
