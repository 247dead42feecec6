// pkg/authorize/casbin.go
package authorize

import (
	"context"
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// IAuthorization is the only thing services/middleware should depend on.
type IAuthorization interface {
	// Authorize answers: "May a caller holding role perform perm?"
	Authorize(ctx context.Context, role Role, perm Permission) (bool, error)

	// MustAuthorize is convenience for services: return ErrForbidden if not allowed.
	MustAuthorize(ctx context.Context, role Role, perm Permission) error

	// Role inheritance (grouping policies): g, role, parent
	AddRoleInheritance(ctx context.Context, role, parent Role) (bool, error)

	// Permission management (policies): p, role, resource, action, eft
	AddPermission(ctx context.Context, role Role, perm Permission, effect PolicyEffect) (bool, error)
	RemovePermission(ctx context.Context, role Role, perm Permission, effect PolicyEffect) (bool, error)

	Raw() *casbin.SyncedEnforcer
}

// Authorization is a thin typed wrapper around casbin.SyncedEnforcer.
type Authorization struct {
	enforcer *casbin.SyncedEnforcer
}

// NewAuthorization wraps an already-configured Enforcer.
func NewAuthorization(e *casbin.SyncedEnforcer) (IAuthorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}
	return &Authorization{enforcer: e}, nil
}

func (a *Authorization) Raw() *casbin.SyncedEnforcer { return a.enforcer }

func (a *Authorization) Authorize(ctx context.Context, role Role, perm Permission) (bool, error) {
	_ = ctx // reserved for tracing/logging later

	if !role.Valid() {
		return false, fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, role)
	}
	if err := perm.validate(); err != nil {
		return false, err
	}

	return a.enforcer.Enforce(string(role), string(perm.Resource), string(perm.Action))
}

func (a *Authorization) MustAuthorize(ctx context.Context, role Role, perm Permission) error {
	ok, err := a.Authorize(ctx, role, perm)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// ---- Grouping (roles) ----

func (a *Authorization) AddRoleInheritance(ctx context.Context, role, parent Role) (bool, error) {
	_ = ctx
	if !role.Valid() || !parent.Valid() {
		return false, fmt.Errorf("%w: unknown role in %q -> %q", ErrInvalidArgs, role, parent)
	}
	if role == parent {
		return false, fmt.Errorf("%w: role cannot inherit itself: %q", ErrInvalidArgs, role)
	}
	return a.enforcer.AddGroupingPolicy(string(role), string(parent))
}

// ---- Permissions (p rules) ----

func (a *Authorization) AddPermission(ctx context.Context, role Role, perm Permission, effect PolicyEffect) (bool, error) {
	_ = ctx
	if !role.Valid() {
		return false, fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, role)
	}
	if err := perm.validate(); err != nil {
		return false, err
	}
	if effect != EffectAllow && effect != EffectDeny {
		return false, fmt.Errorf("%w: invalid effect: %q", ErrInvalidArgs, effect)
	}

	// p, sub(role), obj, act, eft
	return a.enforcer.AddPolicy(string(role), string(perm.Resource), string(perm.Action), string(effect))
}

func (a *Authorization) RemovePermission(ctx context.Context, role Role, perm Permission, effect PolicyEffect) (bool, error) {
	_ = ctx
	if !role.Valid() {
		return false, fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, role)
	}
	return a.enforcer.RemovePolicy(string(role), string(perm.Resource), string(perm.Action), string(effect))
}
