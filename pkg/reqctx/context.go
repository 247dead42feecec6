package reqctx

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey int

const (
	keyRequest ctxKey = iota
	keyAuth
)

// Request describes the HTTP request an operation runs for.
type Request struct {
	ID         string
	ClientIP   string
	UserAgent  string
	ReceivedAt time.Time
}

func WithRequest(ctx context.Context, r Request) context.Context {
	return context.WithValue(ctx, keyRequest, r)
}

func RequestFromContext(ctx context.Context) (Request, bool) {
	r, ok := ctx.Value(keyRequest).(Request)
	return r, ok
}

// RequestID returns "" outside a request.
func RequestID(ctx context.Context) string {
	r, _ := RequestFromContext(ctx)
	return r.ID
}

// LogAttrs lists the request id and caller found in ctx, for structured
// logging. Background contexts yield nothing.
func LogAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if auth, ok := AuthFromContext(ctx); ok {
		attrs = append(attrs, slog.Int("user_id", auth.UserID), slog.String("role", string(auth.Role)))
	}
	return attrs
}
