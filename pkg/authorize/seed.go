package authorize

import (
	"context"
	"log/slog"
)

// DefaultInheritance chains the roles: admin gets everything agent has, agent
// everything customer has.
var DefaultInheritance = []InheritancePolicy{
	{RoleAgent, RoleCustomer},
	{RoleAdmin, RoleAgent},
}

// DefaultPolicies lists what each role adds on top of the role it inherits.
var DefaultPolicies = []PermissionPolicy{
	// Customer: file and follow their own tickets
	{RoleCustomer, PermTicketCreate, EffectAllow},
	{RoleCustomer, PermTicketRead, EffectAllow},
	{RoleCustomer, PermCommentCreate, EffectAllow},
	{RoleCustomer, PermCommentRead, EffectAllow},
	{RoleCustomer, PermActivityRead, EffectAllow},
	{RoleCustomer, PermStatsRead, EffectAllow},
	{RoleCustomer, PermUserListAgents, EffectAllow},
	{RoleCustomer, PermArticleRead, EffectAllow},
	{RoleCustomer, PermArticleFeedback, EffectAllow},

	// Agent: triage
	{RoleAgent, PermTicketUpdateAny, EffectAllow},
	{RoleAgent, PermUserList, EffectAllow},
	{RoleAgent, PermReportRead, EffectAllow},
	{RoleAgent, PermArticleWrite, EffectAllow},

	// Admin: team management
	{RoleAdmin, PermUserCreate, EffectAllow},
	{RoleAdmin, PermTeamInvite, EffectAllow},
}

// SeedDefaultPolicies sets up the baseline RBAC policies. It is idempotent.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	for _, g := range DefaultInheritance {
		if _, err := auth.AddRoleInheritance(ctx, g.Role, g.Parent); err != nil {
			logger.Error("failed to add role inheritance", "role", g.Role, "parent", g.Parent, "error", err)
			return err
		}
	}

	for _, p := range DefaultPolicies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Permission, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "permission", p.Permission.String())
		}
	}

	policyLoadHealthy.Store(true)
	logger.Info("seeded default RBAC policies", "count", len(DefaultPolicies))
	return nil
}
