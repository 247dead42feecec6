package authorize

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"agent", RoleAgent, false},
		{" customer ", RoleCustomer, false},
		{"Admin", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgs) {
					t.Errorf("expected ErrInvalidArgs, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePermission(t *testing.T) {
	tests := []struct {
		in      string
		want    Permission
		wantErr bool
	}{
		{"ticket:update-any", PermTicketUpdateAny, false},
		{"user:list-agents", PermUserListAgents, false},
		{"article:*", Permission{ResourceArticle, WildcardAction}, false},
		{"ticket", Permission{}, true},
		{"ticket:", Permission{}, true},
		{"wallet:read", Permission{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePermission(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePermission(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePermission(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPermissionString(t *testing.T) {
	if got := PermTicketUpdateAny.String(); got != "ticket:update-any" {
		t.Errorf("String() = %q", got)
	}
}

func TestKnownRoles(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleAgent, RoleCustomer} {
		if !r.Valid() {
			t.Errorf("role %q should be valid", r)
		}
	}
	if Role("owner").Valid() {
		t.Error("unexpected valid role")
	}
}
