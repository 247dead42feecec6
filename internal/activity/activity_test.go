package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

func intp(v int) *int { return &v }

func TestClassify(t *testing.T) {
	base := domain.Ticket{ID: 7, Status: domain.StatusOpen, Priority: domain.PriorityMedium}
	adam := &domain.User{ID: 2, Name: "Adam Johnson"}

	with := func(mut func(*domain.Ticket)) domain.Ticket {
		t := base
		mut(&t)
		return t
	}

	tests := []struct {
		name     string
		old, new domain.Ticket
		assignee *domain.User
		want     []domain.ActivityType
		messages []string
	}{
		{
			name: "no change",
			old:  base, new: base,
		},
		{
			name:     "open to in_progress",
			old:      base,
			new:      with(func(t *domain.Ticket) { t.Status = domain.StatusInProgress }),
			want:     []domain.ActivityType{domain.ActivityUpdated},
			messages: []string{"Updated ticket #TK-7"},
		},
		{
			name:     "resolved",
			old:      base,
			new:      with(func(t *domain.Ticket) { t.Status = domain.StatusResolved }),
			want:     []domain.ActivityType{domain.ActivityResolved},
			messages: []string{"Resolved ticket #TK-7"},
		},
		{
			name:     "closed",
			old:      base,
			new:      with(func(t *domain.Ticket) { t.Status = domain.StatusClosed }),
			want:     []domain.ActivityType{domain.ActivityClosed},
			messages: []string{"Closed ticket #TK-7"},
		},
		{
			name:     "resolved to open reopens once",
			old:      with(func(t *domain.Ticket) { t.Status = domain.StatusResolved }),
			new:      base,
			want:     []domain.ActivityType{domain.ActivityReopened},
			messages: []string{"Reopened ticket #TK-7"},
		},
		{
			name: "closed to open reopens",
			old:  with(func(t *domain.Ticket) { t.Status = domain.StatusClosed }),
			new:  base,
			want: []domain.ActivityType{domain.ActivityReopened},
		},
		{
			name: "in_progress to open is a plain update",
			old:  with(func(t *domain.Ticket) { t.Status = domain.StatusInProgress }),
			new:  base,
			want: []domain.ActivityType{domain.ActivityUpdated},
		},
		{
			name:     "escalated",
			old:      base,
			new:      with(func(t *domain.Ticket) { t.Priority = domain.PriorityHigh }),
			want:     []domain.ActivityType{domain.ActivityEscalated},
			messages: []string{"Escalated ticket #TK-7 to high priority"},
		},
		{
			name:     "priority lowered",
			old:      base,
			new:      with(func(t *domain.Ticket) { t.Priority = domain.PriorityLow }),
			want:     []domain.ActivityType{domain.ActivityUpdated},
			messages: []string{"Updated ticket #TK-7 priority to low"},
		},
		{
			name:     "assigned",
			old:      base,
			new:      with(func(t *domain.Ticket) { t.AssignedToID = intp(2) }),
			assignee: adam,
			want:     []domain.ActivityType{domain.ActivityAssigned},
			messages: []string{"Assigned ticket #TK-7 to Adam Johnson"},
		},
		{
			name: "same assignee again",
			old:  with(func(t *domain.Ticket) { t.AssignedToID = intp(2) }),
			new:  with(func(t *domain.Ticket) { t.AssignedToID = intp(2) }),
		},
		{
			name: "unassigned",
			old:  with(func(t *domain.Ticket) { t.AssignedToID = intp(2) }),
			new:  base,
		},
		{
			name: "all groups at once",
			old:  base,
			new: with(func(t *domain.Ticket) {
				t.Status = domain.StatusResolved
				t.AssignedToID = intp(2)
				t.Priority = domain.PriorityHigh
			}),
			assignee: adam,
			want:     []domain.ActivityType{domain.ActivityResolved, domain.ActivityAssigned, domain.ActivityEscalated},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.old, tc.new, tc.assignee, 1)

			kinds := make([]domain.ActivityType, 0, len(got))
			for _, a := range got {
				kinds = append(kinds, a.Type)
				require.NotNil(t, a.TicketID)
				assert.Equal(t, 7, *a.TicketID)
				assert.Equal(t, 1, a.UserID)
			}
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, kinds)
			for i, msg := range tc.messages {
				assert.Equal(t, msg, got[i].Message)
			}
		})
	}
}

type recordingPublisher struct {
	got []domain.Activity
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, a domain.Activity) error {
	p.got = append(p.got, a)
	return p.err
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory(nil)

	john, err := s.CreateUser(ctx, domain.NewUser{Username: "john", Name: "John Smith", Email: "john@example.com"})
	require.NoError(t, err)
	agent, err := s.CreateUser(ctx, domain.NewUser{Username: "agent", Name: "Adam Johnson", Email: "agent@example.com", Role: authorize.RoleAgent})
	require.NoError(t, err)
	tk, err := s.CreateTicket(ctx, domain.NewTicket{Subject: "Payment processing error", CreatedByID: john.ID})
	require.NoError(t, err)

	pub := &recordingPublisher{err: errors.New("broker down")}
	r := New(pub)

	created, err := r.Created(ctx, s, tk, john.ID)
	require.NoError(t, err)
	assert.Equal(t, "Created ticket #TK-1: Payment processing error", created.Message)

	commented, err := r.Commented(ctx, s, tk, &john, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Replied to John Smith on #TK-1", commented.Message)

	anon, err := r.Commented(ctx, s, tk, nil, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Replied to customer on #TK-1", anon.Message)

	updated := tk
	updated.AssignedToID = &agent.ID
	changed, err := r.Changed(ctx, s, tk, updated, agent.ID)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, "Assigned ticket #TK-1 to Adam Johnson", changed[0].Message)

	missing := tk
	missing.AssignedToID = intp(99)
	_, err = r.Changed(ctx, s, tk, missing, agent.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	r.Publish(ctx, created, commented)
	assert.Len(t, pub.got, 2, "publish errors do not stop delivery")

	New(nil).Publish(ctx, created)

	feed, err := s.ListActivitiesByTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Len(t, feed, 4)
}

func TestMeteredForwards(t *testing.T) {
	rec := &recordingPublisher{}
	m, err := NewMetered(rec)
	require.NoError(t, err)

	a := domain.Activity{ID: 1, Type: domain.ActivityCreated}
	require.NoError(t, m.Publish(context.Background(), a))
	assert.Equal(t, []domain.Activity{a}, rec.got)

	bare, err := NewMetered(nil)
	require.NoError(t, err)
	assert.NoError(t, bare.Publish(context.Background(), a))
}
