package authorize

import (
	"context"
	"log/slog"

	"github.com/Alijeyrad/helpdesk_backend/config"
)

// Config holds configuration for the authorization system
type Config struct {
	// CasbinModelPath is the path to the Casbin model file; empty uses the embedded model
	CasbinModelPath string

	// PolicyPath points at a CSV policy file; empty seeds DefaultPolicies in code
	PolicyPath string

	// EnableAudit enables audit logging for all authorization decisions
	EnableAudit bool
}

// DefaultConfig returns sensible defaults for authorization configuration
func DefaultConfig() Config {
	return Config{
		EnableAudit: true,
	}
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig) Config {
	return Config{
		CasbinModelPath: c.CasbinModelPath,
		PolicyPath:      c.PolicyPath,
		EnableAudit:     c.EnableAudit,
	}
}

// New builds the enforcer described by cfg, seeds the default policies when no
// policy file is configured and wraps the result in the audit logger if enabled.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (IAuthorization, error) {
	enforcer, err := NewEnforcer(cfg.CasbinModelPath, cfg.PolicyPath)
	if err != nil {
		return nil, err
	}

	auth, err := NewAuthorization(enforcer)
	if err != nil {
		return nil, err
	}

	if cfg.PolicyPath == "" {
		if err := SeedDefaultPolicies(ctx, auth); err != nil {
			return nil, err
		}
	}

	if cfg.EnableAudit {
		auth = NewAuditedAuthorization(auth, logger)
	}
	return auth, nil
}
