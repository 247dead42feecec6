package authorize

import (
	"context"
	"log/slog"
	"time"

	casbin "github.com/casbin/casbin/v2"
)

// AuditedAuthorization logs every decision as an authz_decision event and
// every policy edit as authz_policy_change. Denials log at warn, grants at
// debug, so a production log shows who was refused what.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{inner: inner, logger: logger.With(slog.String("component", "authz"))}
}

func (a *AuditedAuthorization) Authorize(ctx context.Context, role Role, perm Permission) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Authorize(ctx, role, perm)

	level := slog.LevelDebug
	attrs := []slog.Attr{
		slog.String("role", string(role)),
		slog.String("permission", perm.String()),
		slog.Bool("allowed", allowed),
		slog.Duration("took", time.Since(start)),
	}
	switch {
	case err != nil:
		level = slog.LevelError
		attrs = append(attrs, slog.Any("err", err))
	case !allowed:
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(ctx, level, "authz_decision", attrs...)

	return allowed, err
}

func (a *AuditedAuthorization) MustAuthorize(ctx context.Context, role Role, perm Permission) error {
	ok, err := a.Authorize(ctx, role, perm)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *AuditedAuthorization) AddRoleInheritance(ctx context.Context, role, parent Role) (bool, error) {
	added, err := a.inner.AddRoleInheritance(ctx, role, parent)
	a.policyChange(ctx, "inherit", err,
		slog.String("role", string(role)),
		slog.String("parent", string(parent)),
		slog.Bool("changed", added))
	return added, err
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, role Role, perm Permission, effect PolicyEffect) (bool, error) {
	added, err := a.inner.AddPermission(ctx, role, perm, effect)
	a.policyChange(ctx, "grant", err,
		slog.String("role", string(role)),
		slog.String("permission", perm.String()),
		slog.String("effect", string(effect)),
		slog.Bool("changed", added))
	return added, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, role Role, perm Permission, effect PolicyEffect) (bool, error) {
	removed, err := a.inner.RemovePermission(ctx, role, perm, effect)
	a.policyChange(ctx, "revoke", err,
		slog.String("role", string(role)),
		slog.String("permission", perm.String()),
		slog.String("effect", string(effect)),
		slog.Bool("changed", removed))
	return removed, err
}

// policyChange logs at debug: seeding replays the whole policy on every start.
func (a *AuditedAuthorization) policyChange(ctx context.Context, op string, err error, attrs ...slog.Attr) {
	attrs = append([]slog.Attr{slog.String("op", op)}, attrs...)
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.Any("err", err))
	}
	a.logger.LogAttrs(ctx, level, "authz_policy_change", attrs...)
}

func (a *AuditedAuthorization) Raw() *casbin.SyncedEnforcer {
	return a.inner.Raw()
}
