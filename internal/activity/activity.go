// Package activity derives the audit trail written whenever a ticket is
// created, commented on or changed.
package activity

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
)

// Publisher receives every activity after it has been committed.
type Publisher interface {
	Publish(ctx context.Context, a domain.Activity) error
}

// change is what a rule sees: the snapshot before and after an update and,
// when the new ticket has an assignee, that user.
type change struct {
	old, new domain.Ticket
	assignee *domain.User
}

type rule struct {
	kind    domain.ActivityType
	match   func(c change) bool
	message func(c change) string
}

var title = cases.Title(language.English)

// verbMessage renders "<Kind> ticket #TK-n", e.g. "Reopened ticket #TK-3".
func verbMessage(kind domain.ActivityType) func(change) string {
	return func(c change) string {
		return fmt.Sprintf("%s ticket %s", title.String(string(kind)), c.new.Ref())
	}
}

func statusBecame(s domain.TicketStatus) func(change) bool {
	return func(c change) bool { return c.old.Status != s && c.new.Status == s }
}

// ruleGroups is evaluated group by group. Within a group the first matching
// rule wins; groups are independent of each other.
var ruleGroups = [][]rule{
	// status
	{
		{kind: domain.ActivityResolved, match: statusBecame(domain.StatusResolved), message: verbMessage(domain.ActivityResolved)},
		{kind: domain.ActivityClosed, match: statusBecame(domain.StatusClosed), message: verbMessage(domain.ActivityClosed)},
		{
			kind: domain.ActivityReopened,
			match: func(c change) bool {
				return c.new.Status == domain.StatusOpen &&
					(c.old.Status == domain.StatusResolved || c.old.Status == domain.StatusClosed)
			},
			message: verbMessage(domain.ActivityReopened),
		},
		{
			kind:    domain.ActivityUpdated,
			match:   func(c change) bool { return c.old.Status != c.new.Status },
			message: verbMessage(domain.ActivityUpdated),
		},
	},
	// assignee
	{
		{
			kind: domain.ActivityAssigned,
			match: func(c change) bool {
				n := c.new.AssignedToID
				o := c.old.AssignedToID
				return n != nil && (o == nil || *o != *n)
			},
			message: func(c change) string {
				name := "unknown"
				if c.assignee != nil {
					name = c.assignee.Name
				}
				return fmt.Sprintf("Assigned ticket %s to %s", c.new.Ref(), name)
			},
		},
	},
	// priority
	{
		{
			kind:  domain.ActivityEscalated,
			match: func(c change) bool { return c.old.Priority != c.new.Priority && c.new.Priority == domain.PriorityHigh },
			message: func(c change) string {
				return fmt.Sprintf("Escalated ticket %s to high priority", c.new.Ref())
			},
		},
		{
			kind:  domain.ActivityUpdated,
			match: func(c change) bool { return c.old.Priority != c.new.Priority },
			message: func(c change) string {
				return fmt.Sprintf("Updated ticket %s priority to %s", c.new.Ref(), c.new.Priority)
			},
		},
	},
}

// Recorder writes activities through whatever Store it is handed, so callers
// can run it inside a transaction and publish once that commits.
type Recorder struct {
	pub Publisher
}

// New returns a Recorder. pub may be nil.
func New(pub Publisher) *Recorder {
	return &Recorder{pub: pub}
}

// Classify returns the activity drafts an update from old to new produces,
// without writing anything. assignee is the user behind new.AssignedToID.
func Classify(old, new domain.Ticket, assignee *domain.User, actorID int) []domain.NewActivity {
	c := change{old: old, new: new, assignee: assignee}
	var out []domain.NewActivity
	for _, group := range ruleGroups {
		for _, r := range group {
			if r.match(c) {
				out = append(out, draft(new.ID, actorID, r.kind, r.message(c)))
				break
			}
		}
	}
	return out
}

func (r *Recorder) Created(ctx context.Context, s store.Store, t domain.Ticket, actorID int) (domain.Activity, error) {
	return s.CreateActivity(ctx, draft(t.ID, actorID, domain.ActivityCreated,
		fmt.Sprintf("Created ticket %s: %s", t.Ref(), t.Subject)))
}

// Commented records a reply. creator is the ticket's author; a nil creator
// is rendered as "customer".
func (r *Recorder) Commented(ctx context.Context, s store.Store, t domain.Ticket, creator *domain.User, actorID int) (domain.Activity, error) {
	name := "customer"
	if creator != nil && creator.Name != "" {
		name = creator.Name
	}
	return s.CreateActivity(ctx, draft(t.ID, actorID, domain.ActivityCommented,
		fmt.Sprintf("Replied to %s on %s", name, t.Ref())))
}

// Changed appends one activity per matching rule group for the update
// old -> new and returns them in the order written.
func (r *Recorder) Changed(ctx context.Context, s store.Store, old, new domain.Ticket, actorID int) ([]domain.Activity, error) {
	var assignee *domain.User
	if new.AssignedToID != nil {
		u, err := s.GetUser(ctx, *new.AssignedToID)
		if err != nil {
			return nil, fmt.Errorf("activity: load assignee: %w", err)
		}
		assignee = &u
	}

	drafts := Classify(old, new, assignee, actorID)
	out := make([]domain.Activity, 0, len(drafts))
	for _, d := range drafts {
		a, err := s.CreateActivity(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Publish hands committed activities to the publisher. Failures are logged,
// never returned: the audit row is already durable.
func (r *Recorder) Publish(ctx context.Context, acts ...domain.Activity) {
	if r.pub == nil {
		return
	}
	for _, a := range acts {
		if err := r.pub.Publish(ctx, a); err != nil {
			slog.Warn("activity: publish failed", "activity_id", a.ID, "type", a.Type, "err", err)
		}
	}
}

func draft(ticketID, actorID int, kind domain.ActivityType, msg string) domain.NewActivity {
	id := ticketID
	return domain.NewActivity{Type: kind, TicketID: &id, UserID: actorID, Message: msg}
}
