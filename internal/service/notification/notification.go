// Package notification fans recorded ticket activities out to the people
// involved. Activities travel over NATS; the worker side turns them into
// email.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/email"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Handle emails whoever should hear about a. It returns the number of
	// messages sent.
	Handle(ctx context.Context, a domain.Activity) (int, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	store  store.Store
	mailer email.Sender
	mail   email.Config
}

func New(s store.Store, mailer email.Sender, mailCfg email.Config) Service {
	return &notificationService{store: s, mailer: mailer, mail: mailCfg}
}

func (s *notificationService) Handle(ctx context.Context, a domain.Activity) (int, error) {
	if !s.mailer.Enabled() {
		slog.Debug("notification: email disabled, skipping", "activity_id", a.ID)
		return 0, nil
	}
	if a.TicketID == nil {
		return 0, ErrNoTicket
	}

	t, err := s.store.GetTicket(ctx, *a.TicketID)
	if err != nil {
		return 0, fmt.Errorf("load ticket %d: %w", *a.TicketID, err)
	}

	recipientID, ok := recipient(a, t)
	if !ok || recipientID == a.UserID {
		return 0, nil
	}

	to, err := s.store.GetUser(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("load recipient %d: %w", recipientID, err)
	}
	actorName := "Someone"
	if actor, err := s.store.GetUser(ctx, a.UserID); err == nil {
		actorName = actor.Name
	} else if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("load actor %d: %w", a.UserID, err)
	}

	msg := email.BuildActivityEmail(email.ActivityEmailData{
		RecipientName:  to.Name,
		RecipientEmail: to.Email,
		TicketRef:      t.Ref(),
		TicketID:       t.ID,
		TicketSubject:  t.Subject,
		ActorName:      actorName,
		Message:        a.Message,
		AppName:        s.mail.AppName,
		BaseURL:        s.mail.BaseURL,
	})
	if err := s.mailer.Send(ctx, msg); err != nil {
		return 0, fmt.Errorf("send %s email for %s: %w", a.Type, t.Ref(), err)
	}

	slog.Info("notification: email sent", "activity_id", a.ID, "type", a.Type, "user_id", to.ID)
	return 1, nil
}

// recipient picks who hears about a: the ticket creator for replies and
// lifecycle changes, the assignee for assignments.
func recipient(a domain.Activity, t domain.Ticket) (int, bool) {
	switch a.Type {
	case domain.ActivityCommented, domain.ActivityResolved, domain.ActivityClosed, domain.ActivityReopened:
		return t.CreatedByID, true
	case domain.ActivityAssigned:
		if t.AssignedToID == nil {
			return 0, false
		}
		return *t.AssignedToID, true
	}
	return 0, false
}
