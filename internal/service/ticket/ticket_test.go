package ticket

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/helpdesk_backend/internal/activity"
	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/reqctx"
)

var (
	admin = reqctx.AuthContext{UserID: 1, Role: authorize.RoleAdmin}
	agent = reqctx.AuthContext{UserID: 2, Role: authorize.RoleAgent}
	sarah = reqctx.AuthContext{UserID: 3, Role: authorize.RoleCustomer}
	john  = reqctx.AuthContext{UserID: 4, Role: authorize.RoleCustomer}
)

type capture struct {
	mu  sync.Mutex
	got []domain.Activity
}

func (c *capture) Publish(_ context.Context, a domain.Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, a)
	return nil
}

func newService(t *testing.T) (Service, store.Store, *capture) {
	t.Helper()
	ctx := context.Background()

	s := store.NewMemory(nil)
	require.NoError(t, store.Seed(ctx, s))

	auth, err := authorize.New(ctx, authorize.Config{}, nil)
	require.NoError(t, err)

	pub := &capture{}
	return New(s, auth, activity.New(pub)), s, pub
}

func strp(s string) *string { return &s }

func TestCreate(t *testing.T) {
	svc, s, pub := newService(t)
	ctx := context.Background()

	tk, err := svc.Create(ctx, sarah, CreateRequest{
		Subject:     "Login broken",
		Description: "The login form spins forever",
		Category:    "Website",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, tk.Status)
	assert.Equal(t, domain.PriorityMedium, tk.Priority)
	assert.Equal(t, sarah.UserID, tk.CreatedByID)

	acts, err := s.ListActivitiesByTicket(ctx, tk.ID)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, domain.ActivityCreated, acts[0].Type)
	assert.Equal(t, "Created ticket #TK-5: Login broken", acts[0].Message)
	require.Len(t, pub.got, 1, "created activity is published after commit")
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ok := CreateRequest{Subject: "s", Description: "d", Category: "c"}

	tests := []struct {
		name string
		mut  func(r *CreateRequest)
	}{
		{"blank subject", func(r *CreateRequest) { r.Subject = "  " }},
		{"missing description", func(r *CreateRequest) { r.Description = "" }},
		{"missing category", func(r *CreateRequest) { r.Category = "" }},
		{"bad priority", func(r *CreateRequest) { r.Priority = "urgent" }},
		{"bad status", func(r *CreateRequest) { r.Status = "pending" }},
		{"unknown assignee", func(r *CreateRequest) { id := 99; r.AssignedToID = &id }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := ok
			tc.mut(&req)
			_, err := svc.Create(context.Background(), sarah, req)
			assert.ErrorIs(t, err, ErrInvalidTicket)
		})
	}
}

func TestUpdateClassification(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		id   int
		req  UpdateRequest
		want []domain.ActivityType
	}{
		{
			name: "resolved to open reopens",
			id:   3,
			req:  UpdateRequest{Status: statusp(domain.StatusOpen)},
			want: []domain.ActivityType{domain.ActivityReopened},
		},
		{
			name: "open to in_progress updates",
			id:   2,
			req:  UpdateRequest{Status: statusp(domain.StatusInProgress)},
			want: []domain.ActivityType{domain.ActivityUpdated},
		},
		{
			name: "low to high escalates",
			id:   4,
			req:  UpdateRequest{Priority: priorityp(domain.PriorityHigh)},
			want: []domain.ActivityType{domain.ActivityEscalated},
		},
		{
			name: "reassign to admin",
			id:   1,
			req:  UpdateRequest{AssignedToID: domain.SomeInt(1)},
			want: []domain.ActivityType{domain.ActivityAssigned},
		},
		{
			name: "unassign records nothing",
			id:   1,
			req:  UpdateRequest{AssignedToID: domain.NullInt()},
		},
		{
			name: "subject only records nothing",
			id:   2,
			req:  UpdateRequest{Subject: strp("Payment processing error (card)")},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before, err := s.ListActivitiesByTicket(ctx, tc.id)
			require.NoError(t, err)
			prev, err := s.GetTicket(ctx, tc.id)
			require.NoError(t, err)

			updated, err := svc.Update(ctx, agent, tc.id, tc.req)
			require.NoError(t, err)
			assert.True(t, updated.UpdatedAt.After(prev.UpdatedAt))

			after, err := s.ListActivitiesByTicket(ctx, tc.id)
			require.NoError(t, err)
			fresh := after[:len(after)-len(before)]

			kinds := make([]domain.ActivityType, 0, len(fresh))
			for _, a := range fresh {
				kinds = append(kinds, a.Type)
				assert.Equal(t, agent.UserID, a.UserID)
			}
			if tc.want == nil {
				assert.Empty(t, kinds)
				return
			}
			assert.ElementsMatch(t, tc.want, kinds)
		})
	}
}

func TestConcurrentResolveRecordsOnce(t *testing.T) {
	svc, s, pub := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Update(ctx, admin, 2, UpdateRequest{Status: statusp(domain.StatusResolved)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	acts, err := s.ListActivitiesByTicket(ctx, 2)
	require.NoError(t, err)
	resolved := 0
	for _, a := range acts {
		if a.Type == domain.ActivityResolved {
			resolved++
		}
	}
	assert.Equal(t, 1, resolved)
	assert.Len(t, pub.got, 1)
}

func TestUpdateAssignMessage(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, admin, 2, UpdateRequest{AssignedToID: domain.SomeInt(1)})
	require.NoError(t, err)

	acts, err := s.ListActivitiesByTicket(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Assigned ticket #TK-2 to Admin User", acts[0].Message)
}

func TestUpdatePermissions(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()

	t.Run("customer cannot patch someone else's ticket", func(t *testing.T) {
		before, err := s.GetTicket(ctx, 2)
		require.NoError(t, err)

		_, err = svc.Update(ctx, sarah, 2, UpdateRequest{Status: statusp(domain.StatusClosed)})
		assert.ErrorIs(t, err, ErrForbidden)

		after, err := s.GetTicket(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, before, after, "ticket unchanged")
	})

	t.Run("creator may patch own ticket", func(t *testing.T) {
		_, err := svc.Update(ctx, john, 2, UpdateRequest{Subject: strp("Payment still failing")})
		assert.NoError(t, err)
	})

	t.Run("missing ticket", func(t *testing.T) {
		_, err := svc.Update(ctx, admin, 404, UpdateRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid values", func(t *testing.T) {
		bad := []UpdateRequest{
			{Status: statusp("pending")},
			{Priority: priorityp("urgent")},
			{AssignedToID: domain.SomeInt(99)},
		}
		for _, req := range bad {
			_, err := svc.Update(ctx, admin, 1, req)
			assert.ErrorIs(t, err, ErrInvalidUpdate)
		}
	})
}

func TestAddComment(t *testing.T) {
	svc, s, pub := newService(t)
	ctx := context.Background()

	before, err := s.GetTicket(ctx, 2)
	require.NoError(t, err)

	c, err := svc.AddComment(ctx, agent, 2, "We refunded the charge.")
	require.NoError(t, err)
	assert.Equal(t, agent.UserID, c.UserID)

	after, err := s.GetTicket(ctx, 2)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt), "comment touches updatedAt")

	acts, err := s.ListActivitiesByTicket(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityCommented, acts[0].Type)
	assert.Equal(t, "Replied to John Smith on #TK-2", acts[0].Message)
	require.NotEmpty(t, pub.got)
	assert.Equal(t, domain.ActivityCommented, pub.got[len(pub.got)-1].Type)

	_, err = svc.AddComment(ctx, agent, 2, "   ")
	assert.ErrorIs(t, err, ErrInvalidComment)

	_, err = svc.AddComment(ctx, agent, 404, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	page, err := svc.List(ctx, 1, 3)
	require.NoError(t, err)
	assert.Len(t, page.Tickets, 3)
	assert.Equal(t, domain.Pagination{Total: 4, Page: 1, Limit: 3, TotalPages: 2}, page.Pagination)

	first := page.Tickets[len(page.Tickets)-1]
	require.NotNil(t, first.CreatedBy)
	require.NotNil(t, first.AssignedTo)
	assert.Equal(t, "Adam Johnson", first.AssignedTo.Name)

	page, err = svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, DefaultLimit, page.Pagination.Limit)

	page, err = svc.List(ctx, math.MaxInt, MaxLimit)
	require.NoError(t, err)
	assert.Empty(t, page.Tickets)
	assert.Equal(t, 4, page.Pagination.Total)

	page, err = svc.List(ctx, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, page.Pagination.Limit)

	counts := map[int]int{}
	for _, v := range page.Tickets {
		counts[v.ID] = v.CommentCount
	}
	assert.Equal(t, map[int]int{1: 3, 2: 1, 3: 2, 4: 2}, counts)
}

func TestReads(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Search(ctx, " ")
	assert.ErrorIs(t, err, ErrQueryRequired)

	found, err := svc.Search(ctx, "PAYMENT")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].ID)

	open, err := svc.ByStatus(ctx, domain.StatusOpen)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	none, err := svc.ByStatus(ctx, "bogus")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)

	high, err := svc.ByPriority(ctx, domain.PriorityHigh)
	require.NoError(t, err)
	assert.Len(t, high, 1)

	assigned, err := svc.ByAssignee(ctx, agent.UserID)
	require.NoError(t, err)
	assert.Len(t, assigned, 4)

	mine, err := svc.ByCreator(ctx, sarah.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	detail, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sarah Thompson", detail.CreatedBy.Name)
	require.NotNil(t, detail.AssignedTo)
	assert.Len(t, detail.Comments, 3)
	assert.Equal(t, "I've tried clearing my cache but still having the issue.", detail.Comments[0].Content)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	comments, err := svc.Comments(ctx, 3)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.NotNil(t, comments[1].User)
	assert.Equal(t, "emily", comments[1].User.Username)

	_, err = svc.Comments(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	acts, err := svc.Activities(ctx, 2)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, domain.ActivityEscalated, acts[0].Type)
	require.NotNil(t, acts[0].User)

	_, err = svc.Activities(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	recent, err := svc.RecentActivities(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 8)

	recent, err = svc.RecentActivities(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{1, 10, 1, 10},
		{0, 0, 1, DefaultLimit},
		{-3, -1, 1, DefaultLimit},
		{2, 500, 2, MaxLimit},
		{math.MaxInt, 100, math.MaxInt, MaxLimit},
	}
	for _, tc := range tests {
		p, l := NormalizePage(tc.page, tc.limit)
		assert.Equal(t, tc.wantPage, p)
		assert.Equal(t, tc.wantLimit, l)
	}
}

func statusp(s domain.TicketStatus) *domain.TicketStatus       { return &s }
func priorityp(p domain.TicketPriority) *domain.TicketPriority { return &p }
