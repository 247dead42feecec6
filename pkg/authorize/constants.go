package authorize

import (
	"fmt"
	"strings"
)

type Action string
type Resource string
type Role string

// ----------------------------
// Roles
// ----------------------------
//
// Roles double as casbin policy subjects. Inheritance is
// customer < agent < admin, seeded as grouping policies.

const (
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
)

// Roles lists the roles in ascending privilege order.
var Roles = []Role{RoleCustomer, RoleAgent, RoleAdmin}

var KnownRoles = map[Role]struct{}{
	RoleAdmin:    {},
	RoleAgent:    {},
	RoleCustomer: {},
}

// Valid reports whether r is one of the three static roles.
func (r Role) Valid() bool {
	_, ok := KnownRoles[r]
	return ok
}

// ParseRole converts a raw string (e.g. a DB column or request field) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, s)
	}
	return r, nil
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceTicket   Resource = "ticket"
	ResourceComment  Resource = "comment"
	ResourceActivity Resource = "activity"
	ResourceStats    Resource = "stats"
	ResourceUser     Resource = "user"
	ResourceTeam     Resource = "team"
	ResourceReport   Resource = "report"
	ResourceArticle  Resource = "article"
)

var KnownResources = map[Resource]struct{}{
	ResourceTicket: {}, ResourceComment: {}, ResourceActivity: {}, ResourceStats: {},
	ResourceUser: {}, ResourceTeam: {}, ResourceReport: {}, ResourceArticle: {},
}

// ----------------------------
// Actions
// ----------------------------

const (
	WildcardAction Action = "*"

	ActionCreate     Action = "create"
	ActionRead       Action = "read"
	ActionUpdateAny  Action = "update-any"
	ActionList       Action = "list"
	ActionListAgents Action = "list-agents"
	ActionInvite     Action = "invite"
	ActionWrite      Action = "write"
	ActionFeedback   Action = "feedback"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdateAny: {}, ActionList: {},
	ActionListAgents: {}, ActionInvite: {}, ActionWrite: {}, ActionFeedback: {},
}

// ----------------------------
// Permissions
// ----------------------------

// Permission is a resource:action pair, e.g. "ticket:update-any".
type Permission struct {
	Resource Resource
	Action   Action
}

func (p Permission) String() string {
	return string(p.Resource) + ":" + string(p.Action)
}

var (
	PermTicketCreate    = Permission{ResourceTicket, ActionCreate}
	PermTicketRead      = Permission{ResourceTicket, ActionRead}
	PermTicketUpdateAny = Permission{ResourceTicket, ActionUpdateAny}
	PermCommentCreate   = Permission{ResourceComment, ActionCreate}
	PermCommentRead     = Permission{ResourceComment, ActionRead}
	PermActivityRead    = Permission{ResourceActivity, ActionRead}
	PermStatsRead       = Permission{ResourceStats, ActionRead}
	PermUserListAgents  = Permission{ResourceUser, ActionListAgents}
	PermUserList        = Permission{ResourceUser, ActionList}
	PermUserCreate      = Permission{ResourceUser, ActionCreate}
	PermTeamInvite      = Permission{ResourceTeam, ActionInvite}
	PermReportRead      = Permission{ResourceReport, ActionRead}
	PermArticleRead     = Permission{ResourceArticle, ActionRead}
	PermArticleWrite    = Permission{ResourceArticle, ActionWrite}
	PermArticleFeedback = Permission{ResourceArticle, ActionFeedback}
)

// ParsePermission parses the "resource:action" form.
func ParsePermission(s string) (Permission, error) {
	res, act, ok := strings.Cut(s, ":")
	if !ok || res == "" || act == "" {
		return Permission{}, fmt.Errorf("%w: malformed permission: %q", ErrInvalidArgs, s)
	}
	p := Permission{Resource(res), Action(act)}
	if err := p.validate(); err != nil {
		return Permission{}, err
	}
	return p, nil
}

func (p Permission) validate() error {
	if _, ok := KnownResources[p.Resource]; !ok && p.Resource != WildcardResource {
		return fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, p.Resource)
	}
	if _, ok := KnownActions[p.Action]; !ok && p.Action != WildcardAction {
		return fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, p.Action)
	}
	return nil
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// Permission rows: p, role, resource, action, eft
type PermissionPolicy struct {
	Subject    Role
	Permission Permission
	Effect     PolicyEffect
}

// Grouping rows: g, role, parent role
type InheritancePolicy struct {
	Role   Role
	Parent Role
}
