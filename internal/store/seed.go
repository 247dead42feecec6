package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

// ErrAlreadySeeded is returned by Seed when the demo admin already exists.
var ErrAlreadySeeded = errors.New("store already seeded")

type seedUser struct {
	username, password, name string
	role                     authorize.Role
}

var seedUsers = []seedUser{
	{"admin", "admin123", "Admin User", authorize.RoleAdmin},
	{"agent", "agent123", "Adam Johnson", authorize.RoleAgent},
	{"sarah", "customer123", "Sarah Thompson", authorize.RoleCustomer},
	{"john", "customer123", "John Smith", authorize.RoleCustomer},
	{"emily", "customer123", "Emily Chen", authorize.RoleCustomer},
	{"robert", "customer123", "Robert Johnson", authorize.RoleCustomer},
}

type seedComment struct {
	author  string
	content string
}

type seedActivity struct {
	kind    domain.ActivityType
	actor   string
	message string
}

type seedTicket struct {
	subject, description, category string
	status                         domain.TicketStatus
	priority                       domain.TicketPriority
	creator                        string
	comments                       []seedComment
	activities                     []seedActivity
}

var seedTickets = []seedTicket{
	{
		subject:     "Cannot access admin dashboard",
		description: "I'm trying to access the admin dashboard but I'm getting a 403 error.",
		category:    "Website",
		status:      domain.StatusInProgress,
		priority:    domain.PriorityMedium,
		creator:     "sarah",
		comments: []seedComment{
			{"sarah", "I've tried clearing my cache but still having the issue."},
			{"agent", "Could you please provide screenshots of the error?"},
			{"sarah", "I've attached the screenshot in the ticket description."},
		},
		activities: []seedActivity{
			{domain.ActivityAssigned, "agent", "Assigned ticket %s to Adam Johnson"},
			{domain.ActivityCommented, "agent", "Replied to Sarah Thompson on %s"},
		},
	},
	{
		subject:     "Payment processing error",
		description: "I'm trying to make a payment but I'm getting an error message.",
		category:    "Billing",
		status:      domain.StatusOpen,
		priority:    domain.PriorityHigh,
		creator:     "john",
		comments: []seedComment{
			{"agent", "I'm looking into this issue now."},
		},
		activities: []seedActivity{
			{domain.ActivityEscalated, "agent", "Escalated ticket %s to high priority"},
		},
	},
	{
		subject:     "Need help with mobile app login",
		description: "I can't log in to the mobile app. It says 'Invalid credentials'.",
		category:    "Mobile App",
		status:      domain.StatusResolved,
		priority:    domain.PriorityMedium,
		creator:     "emily",
		comments: []seedComment{
			{"agent", "The issue has been fixed. Please try again and let me know if it works."},
			{"emily", "It works now. Thank you!"},
		},
		activities: []seedActivity{
			{domain.ActivityResolved, "agent", "Resolved ticket %s"},
		},
	},
	{
		subject:     "Feature request: Export data to CSV",
		description: "I would like to be able to export my data to CSV format.",
		category:    "Dashboard",
		status:      domain.StatusOpen,
		priority:    domain.PriorityLow,
		creator:     "robert",
		comments: []seedComment{
			{"agent", "Thanks for the suggestion. We'll consider adding this feature."},
			{"robert", "Great! Looking forward to it."},
		},
	},
}

// Seed loads the demo users, tickets, comments and activities. Every ticket
// is assigned to the demo agent. It refuses to run twice.
func Seed(ctx context.Context, s Store) error {
	if _, err := s.GetUserByUsername(ctx, "admin"); err == nil {
		return ErrAlreadySeeded
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	return s.InTx(ctx, func(tx Store) error {
		ids := make(map[string]int, len(seedUsers))
		for _, u := range seedUsers {
			created, err := tx.CreateUser(ctx, domain.NewUser{
				Username: u.username,
				Password: u.password,
				Name:     u.name,
				Email:    u.username + "@example.com",
				Role:     u.role,
			})
			if err != nil {
				return fmt.Errorf("seed user %s: %w", u.username, err)
			}
			ids[u.username] = created.ID
		}

		agent := ids["agent"]
		for _, st := range seedTickets {
			t, err := tx.CreateTicket(ctx, domain.NewTicket{
				Subject:      st.subject,
				Description:  st.description,
				Status:       st.status,
				Priority:     st.priority,
				Category:     st.category,
				CreatedByID:  ids[st.creator],
				AssignedToID: &agent,
			})
			if err != nil {
				return fmt.Errorf("seed ticket %q: %w", st.subject, err)
			}

			for _, c := range st.comments {
				if _, err := tx.CreateComment(ctx, domain.NewComment{
					Content:  c.content,
					TicketID: t.ID,
					UserID:   ids[c.author],
				}); err != nil {
					return fmt.Errorf("seed comment on %s: %w", t.Ref(), err)
				}
			}

			acts := append([]seedActivity{{
				kind:    domain.ActivityCreated,
				actor:   st.creator,
				message: "Created ticket %s: " + st.subject,
			}}, st.activities...)
			for _, a := range acts {
				ticketID := t.ID
				if _, err := tx.CreateActivity(ctx, domain.NewActivity{
					Type:     a.kind,
					TicketID: &ticketID,
					UserID:   ids[a.actor],
					Message:  fmt.Sprintf(a.message, t.Ref()),
				}); err != nil {
					return fmt.Errorf("seed activity on %s: %w", t.Ref(), err)
				}
			}
		}
		return nil
	})
}
