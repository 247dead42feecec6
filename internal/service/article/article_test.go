package article

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/reqctx"
)

var (
	agent = reqctx.AuthContext{UserID: 2, Role: authorize.RoleAgent}
	sarah = reqctx.AuthContext{UserID: 3, Role: authorize.RoleCustomer}
)

func newService(t *testing.T) Service {
	t.Helper()
	ctx := context.Background()

	s := store.NewMemory(nil)
	require.NoError(t, store.Seed(ctx, s))
	auth, err := authorize.New(ctx, authorize.Config{}, nil)
	require.NoError(t, err)
	return New(s, auth)
}

func boolp(b bool) *bool                                   { return &b }
func strp(s string) *string                                { return &s }
func statusp(s domain.ArticleStatus) *domain.ArticleStatus { return &s }

func TestCreateAndPublish(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, agent, CreateRequest{
		Title:    "Resetting your password",
		Content:  "Use the **Forgot password** link.",
		Category: "Account",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleDraft, a.Status)
	assert.Equal(t, agent.UserID, a.AuthorID)
	assert.Nil(t, a.PublishedAt)

	p, err := svc.Publish(ctx, agent, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ArticlePublished, p.Status)
	require.NotNil(t, p.PublishedAt)

	_, err = svc.Publish(ctx, agent, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t)
	for _, req := range []CreateRequest{
		{Content: "body", Category: "General"},
		{Title: "Title", Content: "   ", Category: "General"},
		{Title: "Title", Content: "body"},
	} {
		_, err := svc.Create(context.Background(), agent, req)
		assert.ErrorIs(t, err, ErrInvalidArticle, "%+v", req)
	}
}

func TestUpdateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, agent, CreateRequest{Title: "T", Content: "C", Category: "General"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, agent, a.ID, UpdateRequest{Status: statusp("deleted")})
	assert.ErrorIs(t, err, ErrInvalidArticle)
	_, err = svc.Update(ctx, agent, a.ID, UpdateRequest{Title: strp(" ")})
	assert.ErrorIs(t, err, ErrInvalidArticle)

	got, err := svc.Update(ctx, agent, a.ID, UpdateRequest{Category: strp("Billing")})
	require.NoError(t, err)
	assert.Equal(t, "Billing", got.Category)
	assert.Equal(t, "T", got.Title)
}

func TestCustomerVisibility(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	draft, err := svc.Create(ctx, agent, CreateRequest{Title: "Draft VPN guide", Content: "wip", Category: "Network"})
	require.NoError(t, err)
	live, err := svc.Create(ctx, agent, CreateRequest{Title: "VPN setup", Content: "steps", Category: "Network"})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, agent, live.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, sarah, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, agent, draft.ID)
	assert.NoError(t, err)

	page, err := svc.List(ctx, sarah, ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, live.ID, page.Articles[0].ID)

	page, err = svc.List(ctx, sarah, ListQuery{Status: domain.ArticleDraft})
	require.NoError(t, err)
	assert.Empty(t, page.Articles)
	assert.Zero(t, page.Pagination.Total)

	page, err = svc.List(ctx, agent, ListQuery{Category: "Network"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)

	_, err = svc.List(ctx, agent, ListQuery{Status: "hidden"})
	assert.ErrorIs(t, err, ErrInvalidArticle)

	found, err := svc.Search(ctx, sarah, "vpn")
	require.NoError(t, err)
	assert.Len(t, found, 1)
	found, err = svc.Search(ctx, agent, "vpn")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = svc.Search(ctx, sarah, "  ")
	assert.ErrorIs(t, err, ErrQueryRequired)
}

func TestGetRendersAndCounts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, agent, CreateRequest{
		Title:    "Printer setup",
		Content:  "# Steps\n\n- [x] plug in\n\n<script>alert(1)</script>",
		Category: "Hardware",
	})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, agent, a.ID)
	require.NoError(t, err)

	_, err = svc.Feedback(ctx, sarah, a.ID, FeedbackRequest{Helpful: boolp(true)})
	require.NoError(t, err)
	_, err = svc.Feedback(ctx, agent, a.ID, FeedbackRequest{Helpful: boolp(false), Comment: strp("outdated")})
	require.NoError(t, err)

	v, err := svc.Get(ctx, sarah, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.ViewCount)
	assert.Contains(t, v.HTML, `<h1 id="steps">Steps</h1>`)
	assert.Contains(t, v.HTML, `type="checkbox"`)
	assert.NotContains(t, v.HTML, "<script>")
	require.NotNil(t, v.Author)
	assert.Equal(t, "Adam Johnson", v.Author.Name)
	assert.Equal(t, domain.FeedbackStats{Helpful: 1, Unhelpful: 1}, v.Feedback)

	v, err = svc.Get(ctx, sarah, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, v.ViewCount)
}

func TestFeedback(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, agent, CreateRequest{Title: "T", Content: "C", Category: "General"})
	require.NoError(t, err)

	_, err = svc.Feedback(ctx, sarah, a.ID, FeedbackRequest{Helpful: boolp(true)})
	assert.ErrorIs(t, err, ErrNotFound, "drafts take no customer feedback")

	_, err = svc.Feedback(ctx, agent, a.ID, FeedbackRequest{})
	assert.ErrorIs(t, err, ErrInvalidFeedback)

	fb, err := svc.Feedback(ctx, agent, a.ID, FeedbackRequest{Helpful: boolp(true), Comment: strp("  ")})
	require.NoError(t, err)
	require.NotNil(t, fb.UserID)
	assert.Equal(t, agent.UserID, *fb.UserID)
	assert.Nil(t, fb.Comment)
}
