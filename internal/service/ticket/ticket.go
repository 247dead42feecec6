package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Alijeyrad/helpdesk_backend/internal/activity"
	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/reqctx"
)

const (
	DefaultLimit         = 10
	MaxLimit             = 100
	DefaultActivityLimit = 10
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Subject      string                `json:"subject"`
	Description  string                `json:"description"`
	Category     string                `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	AssignedToID *int                  `json:"assignedToId"`
}

// UpdateRequest is a partial update; absent fields are left alone and an
// explicit null assignedToId unassigns.
type UpdateRequest = domain.TicketPatch

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, auth reqctx.AuthContext, req CreateRequest) (domain.Ticket, error)
	Update(ctx context.Context, auth reqctx.AuthContext, id int, req UpdateRequest) (domain.Ticket, error)
	AddComment(ctx context.Context, auth reqctx.AuthContext, ticketID int, content string) (domain.Comment, error)

	List(ctx context.Context, page, limit int) (domain.TicketPage, error)
	Search(ctx context.Context, q string) ([]domain.Ticket, error)
	ByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
	ByPriority(ctx context.Context, priority domain.TicketPriority) ([]domain.Ticket, error)
	ByAssignee(ctx context.Context, userID int) ([]domain.Ticket, error)
	ByCreator(ctx context.Context, userID int) ([]domain.Ticket, error)
	Get(ctx context.Context, id int) (domain.TicketDetail, error)
	Comments(ctx context.Context, id int) ([]domain.CommentView, error)
	Activities(ctx context.Context, id int) ([]domain.ActivityView, error)
	RecentActivities(ctx context.Context, limit int) ([]domain.ActivityView, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type ticketService struct {
	store    store.Store
	auth     authorize.IAuthorization
	recorder *activity.Recorder
}

func New(s store.Store, auth authorize.IAuthorization, recorder *activity.Recorder) Service {
	return &ticketService{store: s, auth: auth, recorder: recorder}
}

func (s *ticketService) Create(ctx context.Context, auth reqctx.AuthContext, req CreateRequest) (domain.Ticket, error) {
	if err := s.validateCreate(ctx, req); err != nil {
		return domain.Ticket{}, err
	}

	var (
		t       domain.Ticket
		created domain.Activity
	)
	err := s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		t, err = tx.CreateTicket(ctx, domain.NewTicket{
			Subject:      req.Subject,
			Description:  req.Description,
			Status:       req.Status,
			Priority:     req.Priority,
			Category:     req.Category,
			CreatedByID:  auth.UserID,
			AssignedToID: req.AssignedToID,
		})
		if err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		created, err = s.recorder.Created(ctx, tx, t, auth.UserID)
		if err != nil {
			return fmt.Errorf("record created: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.recorder.Publish(ctx, created)
	return t, nil
}

func (s *ticketService) validateCreate(ctx context.Context, req CreateRequest) error {
	switch {
	case strings.TrimSpace(req.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidTicket)
	case strings.TrimSpace(req.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidTicket)
	case strings.TrimSpace(req.Category) == "":
		return fmt.Errorf("%w: category is required", ErrInvalidTicket)
	case req.Priority != "" && !req.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidTicket, req.Priority)
	case req.Status != "" && !req.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTicket, req.Status)
	}
	if req.AssignedToID != nil {
		if err := s.userExists(ctx, *req.AssignedToID); err != nil {
			return fmt.Errorf("%w: assignee: %w", ErrInvalidTicket, err)
		}
	}
	return nil
}

func (s *ticketService) Update(ctx context.Context, auth reqctx.AuthContext, id int, req UpdateRequest) (domain.Ticket, error) {
	current, err := s.getTicket(ctx, id)
	if err != nil {
		return domain.Ticket{}, err
	}

	if current.CreatedByID != auth.UserID {
		ok, err := s.auth.Authorize(ctx, auth.Role, authorize.PermTicketUpdateAny)
		if err != nil {
			return domain.Ticket{}, fmt.Errorf("authorize update: %w", err)
		}
		if !ok {
			return domain.Ticket{}, ErrForbidden
		}
	}

	if err := s.validateUpdate(ctx, req); err != nil {
		return domain.Ticket{}, err
	}

	var (
		updated domain.Ticket
		acts    []domain.Activity
	)
	err = s.store.InTx(ctx, func(tx store.Store) error {
		old, err := tx.GetTicket(ctx, id)
		if err != nil {
			return err
		}
		updated, err = tx.UpdateTicket(ctx, id, req)
		if err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		acts, err = s.recorder.Changed(ctx, tx, old, updated, auth.UserID)
		if err != nil {
			return fmt.Errorf("record changes: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Ticket{}, ErrNotFound
		}
		return domain.Ticket{}, err
	}

	s.recorder.Publish(ctx, acts...)
	return updated, nil
}

func (s *ticketService) validateUpdate(ctx context.Context, req UpdateRequest) error {
	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidUpdate, *req.Status)
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidUpdate, *req.Priority)
	}
	if req.AssignedToID.Valid {
		if err := s.userExists(ctx, req.AssignedToID.Value); err != nil {
			return fmt.Errorf("%w: assignee: %w", ErrInvalidUpdate, err)
		}
	}
	return nil
}

func (s *ticketService) AddComment(ctx context.Context, auth reqctx.AuthContext, ticketID int, content string) (domain.Comment, error) {
	t, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return domain.Comment{}, err
	}
	if strings.TrimSpace(content) == "" {
		return domain.Comment{}, fmt.Errorf("%w: content is required", ErrInvalidComment)
	}

	var (
		comment   domain.Comment
		commented domain.Activity
	)
	err = s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		comment, err = tx.CreateComment(ctx, domain.NewComment{
			Content:  content,
			TicketID: t.ID,
			UserID:   auth.UserID,
		})
		if err != nil {
			return fmt.Errorf("create comment: %w", err)
		}

		var creator *domain.User
		if u, err := tx.GetUser(ctx, t.CreatedByID); err == nil {
			creator = &u
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("load creator: %w", err)
		}

		commented, err = s.recorder.Commented(ctx, tx, t, creator, auth.UserID)
		if err != nil {
			return fmt.Errorf("record comment: %w", err)
		}

		if _, err := tx.UpdateTicket(ctx, t.ID, domain.TicketPatch{}); err != nil {
			return fmt.Errorf("touch ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Comment{}, ErrNotFound
		}
		return domain.Comment{}, err
	}

	s.recorder.Publish(ctx, commented)
	return comment, nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// NormalizePage clamps paging input: page < 1 becomes 1, limit < 1 becomes
// DefaultLimit and limit is capped at MaxLimit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func (s *ticketService) List(ctx context.Context, page, limit int) (domain.TicketPage, error) {
	page, limit = NormalizePage(page, limit)

	tickets, total, err := s.store.PageTickets(ctx, page, limit)
	if err != nil {
		return domain.TicketPage{}, fmt.Errorf("page tickets: %w", err)
	}

	users := newUserCache(s.store)
	views := make([]domain.TicketView, 0, len(tickets))
	for _, t := range tickets {
		v := domain.TicketView{Ticket: t}
		if v.CreatedBy, err = users.get(ctx, t.CreatedByID); err != nil {
			return domain.TicketPage{}, err
		}
		if t.AssignedToID != nil {
			if v.AssignedTo, err = users.get(ctx, *t.AssignedToID); err != nil {
				return domain.TicketPage{}, err
			}
		}
		if v.CommentCount, err = s.store.CountComments(ctx, t.ID); err != nil {
			return domain.TicketPage{}, fmt.Errorf("count comments: %w", err)
		}
		views = append(views, v)
	}

	return domain.TicketPage{
		Tickets:    views,
		Pagination: domain.NewPagination(total, page, limit),
	}, nil
}

func (s *ticketService) Search(ctx context.Context, q string) ([]domain.Ticket, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrQueryRequired
	}
	tickets, err := s.store.SearchTickets(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search tickets: %w", err)
	}
	return tickets, nil
}

// ByStatus returns an empty list for an unknown status.
func (s *ticketService) ByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	if !status.Valid() {
		return []domain.Ticket{}, nil
	}
	return s.store.ListTicketsByStatus(ctx, status)
}

func (s *ticketService) ByPriority(ctx context.Context, priority domain.TicketPriority) ([]domain.Ticket, error) {
	if !priority.Valid() {
		return []domain.Ticket{}, nil
	}
	return s.store.ListTicketsByPriority(ctx, priority)
}

func (s *ticketService) ByAssignee(ctx context.Context, userID int) ([]domain.Ticket, error) {
	return s.store.ListTicketsByAssignee(ctx, userID)
}

func (s *ticketService) ByCreator(ctx context.Context, userID int) ([]domain.Ticket, error) {
	return s.store.ListTicketsByCreator(ctx, userID)
}

func (s *ticketService) Get(ctx context.Context, id int) (domain.TicketDetail, error) {
	t, err := s.getTicket(ctx, id)
	if err != nil {
		return domain.TicketDetail{}, err
	}

	users := newUserCache(s.store)
	creator, err := users.get(ctx, t.CreatedByID)
	if err != nil {
		return domain.TicketDetail{}, err
	}
	if creator == nil {
		return domain.TicketDetail{}, fmt.Errorf("%w: creator %d missing", ErrNotFound, t.CreatedByID)
	}

	d := domain.TicketDetail{Ticket: t, CreatedBy: *creator}
	if t.AssignedToID != nil {
		if d.AssignedTo, err = users.get(ctx, *t.AssignedToID); err != nil {
			return domain.TicketDetail{}, err
		}
	}
	if d.Comments, err = s.store.ListComments(ctx, t.ID); err != nil {
		return domain.TicketDetail{}, fmt.Errorf("list comments: %w", err)
	}
	return d, nil
}

func (s *ticketService) Comments(ctx context.Context, id int) ([]domain.CommentView, error) {
	if _, err := s.getTicket(ctx, id); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	users := newUserCache(s.store)
	out := make([]domain.CommentView, 0, len(comments))
	for _, c := range comments {
		u, err := users.get(ctx, c.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.CommentView{Comment: c, User: u})
	}
	return out, nil
}

func (s *ticketService) Activities(ctx context.Context, id int) ([]domain.ActivityView, error) {
	if _, err := s.getTicket(ctx, id); err != nil {
		return nil, err
	}
	acts, err := s.store.ListActivitiesByTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return s.activityViews(ctx, acts)
}

func (s *ticketService) RecentActivities(ctx context.Context, limit int) ([]domain.ActivityView, error) {
	if limit < 1 {
		limit = DefaultActivityLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	acts, err := s.store.ListRecentActivities(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent activities: %w", err)
	}
	return s.activityViews(ctx, acts)
}

func (s *ticketService) activityViews(ctx context.Context, acts []domain.Activity) ([]domain.ActivityView, error) {
	users := newUserCache(s.store)
	out := make([]domain.ActivityView, 0, len(acts))
	for _, a := range acts {
		u, err := users.get(ctx, a.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ActivityView{Activity: a, User: u})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (s *ticketService) getTicket(ctx context.Context, id int) (domain.Ticket, error) {
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Ticket{}, ErrNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

func (s *ticketService) userExists(ctx context.Context, id int) error {
	_, err := s.store.GetUser(ctx, id)
	return err
}

// userCache memoizes user lookups for one read. Missing users resolve to nil.
type userCache struct {
	store store.Store
	seen  map[int]*domain.User
}

func newUserCache(s store.Store) *userCache {
	return &userCache{store: s, seen: make(map[int]*domain.User)}
}

func (c *userCache) get(ctx context.Context, id int) (*domain.User, error) {
	if u, ok := c.seen[id]; ok {
		return u, nil
	}
	u, err := c.store.GetUser(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.seen[id] = nil
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	c.seen[id] = &u
	return &u, nil
}
