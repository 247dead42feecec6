package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/email"
)

type published struct {
	subj string
	data []byte
}

type fakeConn struct {
	msgs []published
	err  error
}

func (c *fakeConn) Publish(subj string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, published{subj, data})
	return nil
}

type outbox struct {
	enabled bool
	sent    []email.Message
}

func (o *outbox) Send(_ context.Context, m email.Message) error {
	o.sent = append(o.sent, m)
	return nil
}

func (o *outbox) Enabled() bool { return o.enabled }

func intp(v int) *int { return &v }

func TestPublisherRoundTrip(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "helpdesk")

	a := domain.Activity{ID: 9, Type: domain.ActivityResolved, TicketID: intp(3), UserID: 1, Message: "Resolved ticket #TK-3"}
	require.NoError(t, p.Publish(context.Background(), a))

	require.Len(t, conn.msgs, 1)
	assert.Equal(t, "helpdesk.activity.resolved.3", conn.msgs[0].subj)

	got, err := Decode(conn.msgs[0].data)
	require.NoError(t, err)
	assert.Equal(t, a.Message, got.Message)
	assert.Equal(t, 3, *got.TicketID)

	conn.err = errors.New("nats: connection closed")
	assert.Error(t, p.Publish(context.Background(), a))
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "hd.activity.created.none", ActivitySubject("hd", domain.Activity{Type: domain.ActivityCreated}))
	assert.Equal(t, "hd.activity.>", ActivityWildcard("hd"))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("{"))
	assert.ErrorIs(t, err, ErrMalformedEvent)
	_, err = Decode([]byte(`{"type":"deleted"}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func newService(t *testing.T, mail *outbox) (Service, store.Store) {
	t.Helper()
	s := store.NewMemory(nil)
	require.NoError(t, store.Seed(context.Background(), s))
	return New(s, mail, email.Config{AppName: "Helpdesk", BaseURL: "http://localhost"}), s
}

func TestHandle(t *testing.T) {
	// Seed ticket 2 was filed by john (4) and is assigned to agent (2).
	tests := []struct {
		name   string
		act    domain.Activity
		sentTo string
	}{
		{"agent reply reaches creator", domain.Activity{Type: domain.ActivityCommented, TicketID: intp(2), UserID: 2, Message: "Replied to John Smith on #TK-2"}, "john@example.com"},
		{"creator's own reply is silent", domain.Activity{Type: domain.ActivityCommented, TicketID: intp(2), UserID: 4}, ""},
		{"resolution reaches creator", domain.Activity{Type: domain.ActivityResolved, TicketID: intp(2), UserID: 1}, "john@example.com"},
		{"assignment reaches assignee", domain.Activity{Type: domain.ActivityAssigned, TicketID: intp(2), UserID: 1}, "agent@example.com"},
		{"self assignment is silent", domain.Activity{Type: domain.ActivityAssigned, TicketID: intp(2), UserID: 2}, ""},
		{"priority change is silent", domain.Activity{Type: domain.ActivityEscalated, TicketID: intp(2), UserID: 1}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mail := &outbox{enabled: true}
			svc, _ := newService(t, mail)

			n, err := svc.Handle(context.Background(), tt.act)
			require.NoError(t, err)
			if tt.sentTo == "" {
				assert.Zero(t, n)
				assert.Empty(t, mail.sent)
				return
			}
			assert.Equal(t, 1, n)
			require.Len(t, mail.sent, 1)
			assert.Equal(t, []string{tt.sentTo}, mail.sent[0].To)
			assert.Contains(t, mail.sent[0].Subject, "#TK-2")
		})
	}
}

func TestHandleDisabledOrBroken(t *testing.T) {
	mail := &outbox{}
	svc, _ := newService(t, mail)
	ctx := context.Background()

	n, err := svc.Handle(ctx, domain.Activity{Type: domain.ActivityCommented, TicketID: intp(2), UserID: 2})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, mail.sent)

	mail.enabled = true
	_, err = svc.Handle(ctx, domain.Activity{Type: domain.ActivityCommented, UserID: 2})
	assert.ErrorIs(t, err, ErrNoTicket)

	_, err = svc.Handle(ctx, domain.Activity{Type: domain.ActivityCommented, TicketID: intp(99), UserID: 2})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
