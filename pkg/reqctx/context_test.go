package reqctx

import (
	"context"
	"testing"

	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

func TestRequest(t *testing.T) {
	ctx := context.Background()
	if got := RequestID(ctx); got != "" {
		t.Fatalf("empty context: got request id %q", got)
	}

	ctx = WithRequest(ctx, Request{ID: "req-1", ClientIP: "10.0.0.1"})
	if got := RequestID(ctx); got != "req-1" {
		t.Fatalf("got %q, want req-1", got)
	}
	r, ok := RequestFromContext(ctx)
	if !ok || r.ClientIP != "10.0.0.1" {
		t.Fatalf("got %+v, %v", r, ok)
	}
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		wantOK bool
	}{
		{"unset", context.Background(), false},
		{"zero user", WithAuth(context.Background(), AuthContext{}), false},
		{"agent", WithAuth(context.Background(), AuthContext{UserID: 2, Role: authorize.RoleAgent}), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AuthFromContext(tc.ctx)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && (got.UserID != 2 || got.Role != authorize.RoleAgent) {
				t.Fatalf("unexpected auth %+v", got)
			}
		})
	}
}

func TestLogAttrs(t *testing.T) {
	if n := len(LogAttrs(context.Background())); n != 0 {
		t.Fatalf("background context: got %d attrs", n)
	}

	ctx := WithRequest(context.Background(), Request{ID: "req-9"})
	ctx = WithAuth(ctx, AuthContext{UserID: 3, Role: authorize.RoleCustomer})

	got := map[string]string{}
	for _, a := range LogAttrs(ctx) {
		got[a.Key] = a.Value.String()
	}
	want := map[string]string{"request_id": "req-9", "user_id": "3", "role": "customer"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}
