package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

// Memory is a map-backed Store. Every operation holds the mutex for its whole
// duration so each call is atomic against concurrent requests.
type Memory struct {
	mu sync.RWMutex
	// txMu serializes InTx callbacks against each other.
	txMu  sync.Mutex
	clock Clock

	users      map[int]domain.User
	tickets    map[int]domain.Ticket
	comments   map[int]domain.Comment
	activities map[int]domain.Activity
	articles   map[int]domain.Article
	feedback   map[int]domain.ArticleFeedback

	seq struct {
		user, ticket, comment, activity, article, feedback int
	}
}

var _ Store = (*Memory)(nil)

func NewMemory(clock Clock) *Memory {
	return &Memory{
		clock:      clock,
		users:      make(map[int]domain.User),
		tickets:    make(map[int]domain.Ticket),
		comments:   make(map[int]domain.Comment),
		activities: make(map[int]domain.Activity),
		articles:   make(map[int]domain.Article),
		feedback:   make(map[int]domain.ArticleFeedback),
	}
}

func (m *Memory) InTx(_ context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(memoryTx{m})
}

// memoryTx is the Store handed to an InTx callback. Nested InTx calls run
// inline since the outer call already holds txMu.
type memoryTx struct{ *Memory }

func (tx memoryTx) InTx(_ context.Context, fn func(Store) error) error {
	return fn(tx)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (m *Memory) GetUser(_ context.Context, id int) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %q: %w", email, ErrNotFound)
}

func (m *Memory) CreateUser(_ context.Context, in domain.NewUser) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == in.Username {
			return domain.User{}, fmt.Errorf("username %q: %w", in.Username, ErrConflict)
		}
		if u.Email == in.Email {
			return domain.User{}, fmt.Errorf("email %q: %w", in.Email, ErrConflict)
		}
	}

	role := in.Role
	if role == "" {
		role = authorize.RoleCustomer
	}

	m.seq.user++
	u := domain.User{
		ID:        m.seq.user,
		Username:  in.Username,
		Password:  in.Password,
		Name:      in.Name,
		Email:     in.Email,
		Role:      role,
		AvatarURL: in.AvatarURL,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedByID(m.users, func(u domain.User) int { return u.ID }), nil
}

func (m *Memory) ListUsersByRole(ctx context.Context, role authorize.Role) ([]domain.User, error) {
	all, _ := m.ListUsers(ctx)
	out := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Tickets
// ---------------------------------------------------------------------------

func (m *Memory) CreateTicket(_ context.Context, in domain.NewTicket) (domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := in.Status
	if status == "" {
		status = domain.StatusOpen
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := m.clock.now()
	m.seq.ticket++
	t := domain.Ticket{
		ID:           m.seq.ticket,
		Subject:      in.Subject,
		Description:  in.Description,
		Status:       status,
		Priority:     priority,
		Category:     in.Category,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedByID:  in.CreatedByID,
		AssignedToID: copyInt(in.AssignedToID),
	}
	m.tickets[t.ID] = t
	return cloneTicket(t), nil
}

func (m *Memory) GetTicket(_ context.Context, id int) (domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tickets[id]
	if !ok {
		return domain.Ticket{}, fmt.Errorf("ticket %d: %w", id, ErrNotFound)
	}
	return cloneTicket(t), nil
}

func (m *Memory) UpdateTicket(_ context.Context, id int, p domain.TicketPatch) (domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[id]
	if !ok {
		return domain.Ticket{}, fmt.Errorf("ticket %d: %w", id, ErrNotFound)
	}

	updated := t.Apply(p)
	updated.AssignedToID = copyInt(updated.AssignedToID)
	updated.UpdatedAt = m.clock.bump(t.UpdatedAt)
	m.tickets[id] = updated
	return cloneTicket(updated), nil
}

func (m *Memory) ListTickets(_ context.Context) ([]domain.Ticket, error) {
	return m.filterTickets(func(domain.Ticket) bool { return true }), nil
}

func (m *Memory) ListTicketsByStatus(_ context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	return m.filterTickets(func(t domain.Ticket) bool { return t.Status == status }), nil
}

func (m *Memory) ListTicketsByPriority(_ context.Context, priority domain.TicketPriority) ([]domain.Ticket, error) {
	return m.filterTickets(func(t domain.Ticket) bool { return t.Priority == priority }), nil
}

func (m *Memory) ListTicketsByAssignee(_ context.Context, userID int) ([]domain.Ticket, error) {
	return m.filterTickets(func(t domain.Ticket) bool {
		return t.AssignedToID != nil && *t.AssignedToID == userID
	}), nil
}

func (m *Memory) ListTicketsByCreator(_ context.Context, userID int) ([]domain.Ticket, error) {
	return m.filterTickets(func(t domain.Ticket) bool { return t.CreatedByID == userID }), nil
}

func (m *Memory) PageTickets(_ context.Context, page, limit int) ([]domain.Ticket, int, error) {
	all := m.filterTickets(func(domain.Ticket) bool { return true })
	return window(all, offset(page, limit), limit), len(all), nil
}

func (m *Memory) SearchTickets(_ context.Context, query string) ([]domain.Ticket, error) {
	q := strings.ToLower(query)
	return m.filterTickets(func(t domain.Ticket) bool {
		return containsFold(t.Subject, q) || containsFold(t.Description, q) || containsFold(t.Category, q)
	}), nil
}

func (m *Memory) CountComments(_ context.Context, ticketID int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, c := range m.comments {
		if c.TicketID == ticketID {
			n++
		}
	}
	return n, nil
}

// filterTickets returns matching tickets newest first, ties broken by id.
func (m *Memory) filterTickets(keep func(domain.Ticket) bool) []domain.Ticket {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		if keep(t) {
			out = append(out, cloneTicket(t))
		}
	}
	slices.SortFunc(out, func(a, b domain.Ticket) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out
}

// ---------------------------------------------------------------------------
// Comments & activities
// ---------------------------------------------------------------------------

func (m *Memory) CreateComment(_ context.Context, in domain.NewComment) (domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tickets[in.TicketID]; !ok {
		return domain.Comment{}, fmt.Errorf("ticket %d: %w", in.TicketID, ErrNotFound)
	}

	m.seq.comment++
	c := domain.Comment{
		ID:        m.seq.comment,
		Content:   in.Content,
		CreatedAt: m.clock.now(),
		TicketID:  in.TicketID,
		UserID:    in.UserID,
	}
	m.comments[c.ID] = c
	return c, nil
}

func (m *Memory) ListComments(_ context.Context, ticketID int) ([]domain.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Comment, 0)
	for _, c := range m.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Comment) int {
		return -newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) CreateActivity(_ context.Context, in domain.NewActivity) (domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq.activity++
	a := domain.Activity{
		ID:        m.seq.activity,
		Type:      in.Type,
		TicketID:  copyInt(in.TicketID),
		UserID:    in.UserID,
		Message:   in.Message,
		CreatedAt: m.clock.now(),
	}
	m.activities[a.ID] = a
	return a, nil
}

func (m *Memory) ListActivitiesByTicket(_ context.Context, ticketID int) ([]domain.Activity, error) {
	return m.filterActivities(func(a domain.Activity) bool {
		return a.TicketID != nil && *a.TicketID == ticketID
	}, 0), nil
}

func (m *Memory) ListRecentActivities(_ context.Context, limit int) ([]domain.Activity, error) {
	return m.filterActivities(func(domain.Activity) bool { return true }, limit), nil
}

func (m *Memory) filterActivities(keep func(domain.Activity) bool, limit int) []domain.Activity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Activity, 0)
	for _, a := range m.activities {
		if keep(a) {
			a.TicketID = copyInt(a.TicketID)
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b domain.Activity) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ---------------------------------------------------------------------------
// Articles
// ---------------------------------------------------------------------------

func (m *Memory) CreateArticle(_ context.Context, in domain.NewArticle) (domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.now()
	m.seq.article++
	a := domain.Article{
		ID:        m.seq.article,
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		Status:    domain.ArticleDraft,
		AuthorID:  in.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.articles[a.ID] = a
	return a, nil
}

func (m *Memory) GetArticle(_ context.Context, id int) (domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.articles[id]
	if !ok {
		return domain.Article{}, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return a, nil
}

func (m *Memory) UpdateArticle(_ context.Context, id int, p domain.ArticlePatch) (domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.articles[id]
	if !ok {
		return domain.Article{}, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	updated := a.Apply(p, m.clock.now())
	updated.UpdatedAt = m.clock.bump(a.UpdatedAt)
	m.articles[id] = updated
	return updated, nil
}

func (m *Memory) PageArticles(_ context.Context, f domain.ArticleFilter, page, limit int) ([]domain.Article, int, error) {
	all := m.filterArticles(func(a domain.Article) bool {
		return (f.Status == "" || a.Status == f.Status) &&
			(f.Category == "" || a.Category == f.Category) &&
			(f.AuthorID == 0 || a.AuthorID == f.AuthorID)
	})
	return window(all, offset(page, limit), limit), len(all), nil
}

func (m *Memory) SearchArticles(_ context.Context, query string, publishedOnly bool) ([]domain.Article, error) {
	q := strings.ToLower(query)
	return m.filterArticles(func(a domain.Article) bool {
		if publishedOnly && a.Status != domain.ArticlePublished {
			return false
		}
		return containsFold(a.Title, q) || containsFold(a.Content, q) || containsFold(a.Category, q)
	}), nil
}

func (m *Memory) IncrementArticleViews(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.articles[id]
	if !ok {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	a.ViewCount++
	m.articles[id] = a
	return nil
}

func (m *Memory) CreateArticleFeedback(_ context.Context, in domain.NewArticleFeedback) (domain.ArticleFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[in.ArticleID]; !ok {
		return domain.ArticleFeedback{}, fmt.Errorf("article %d: %w", in.ArticleID, ErrNotFound)
	}

	m.seq.feedback++
	f := domain.ArticleFeedback{
		ID:        m.seq.feedback,
		ArticleID: in.ArticleID,
		UserID:    copyInt(in.UserID),
		Helpful:   in.Helpful,
		Comment:   in.Comment,
		CreatedAt: m.clock.now(),
	}
	m.feedback[f.ID] = f
	return f, nil
}

func (m *Memory) ListArticleFeedback(_ context.Context, articleID int) ([]domain.ArticleFeedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.ArticleFeedback, 0)
	for _, f := range m.feedback {
		if f.ArticleID == articleID {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b domain.ArticleFeedback) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) filterArticles(keep func(domain.Article) bool) []domain.Article {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Article, 0)
	for _, a := range m.articles {
		if keep(a) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b domain.Article) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func newestFirst(at, bt time.Time, aid, bid int) int {
	if c := bt.Compare(at); c != 0 {
		return c
	}
	return cmp.Compare(bid, aid)
}

func sortedByID[T any](items map[int]T, id func(T) int) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}

func window[T any](items []T, off, limit int) []T {
	if off >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && off+limit < end {
		end = off + limit
	}
	return items[off:end]
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.AssignedToID = copyInt(t.AssignedToID)
	return t
}
