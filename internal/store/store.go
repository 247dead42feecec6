// Package store owns persistence for users, tickets, comments, activities and
// knowledge-base articles. Two implementations share one contract: a
// map-backed memory store and a relational store built on ent's dialect/sql.
package store

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Clock supplies timestamps. Tests inject a fixed clock.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC().Truncate(time.Microsecond)
	}
	return c().UTC().Truncate(time.Microsecond)
}

// bump returns a timestamp strictly after prev so updatedAt always moves forward.
func (c Clock) bump(prev time.Time) time.Time {
	next := c.now()
	if !next.After(prev) {
		next = prev.Add(time.Microsecond)
	}
	return next
}

type Store interface {
	GetUser(ctx context.Context, id int) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	CreateUser(ctx context.Context, u domain.NewUser) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListUsersByRole(ctx context.Context, role authorize.Role) ([]domain.User, error)

	CreateTicket(ctx context.Context, t domain.NewTicket) (domain.Ticket, error)
	GetTicket(ctx context.Context, id int) (domain.Ticket, error)
	UpdateTicket(ctx context.Context, id int, p domain.TicketPatch) (domain.Ticket, error)
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	ListTicketsByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
	ListTicketsByPriority(ctx context.Context, priority domain.TicketPriority) ([]domain.Ticket, error)
	ListTicketsByAssignee(ctx context.Context, userID int) ([]domain.Ticket, error)
	ListTicketsByCreator(ctx context.Context, userID int) ([]domain.Ticket, error)
	PageTickets(ctx context.Context, page, limit int) ([]domain.Ticket, int, error)
	SearchTickets(ctx context.Context, query string) ([]domain.Ticket, error)
	CountComments(ctx context.Context, ticketID int) (int, error)

	CreateComment(ctx context.Context, c domain.NewComment) (domain.Comment, error)
	ListComments(ctx context.Context, ticketID int) ([]domain.Comment, error)

	CreateActivity(ctx context.Context, a domain.NewActivity) (domain.Activity, error)
	ListActivitiesByTicket(ctx context.Context, ticketID int) ([]domain.Activity, error)
	ListRecentActivities(ctx context.Context, limit int) ([]domain.Activity, error)

	CreateArticle(ctx context.Context, a domain.NewArticle) (domain.Article, error)
	GetArticle(ctx context.Context, id int) (domain.Article, error)
	UpdateArticle(ctx context.Context, id int, p domain.ArticlePatch) (domain.Article, error)
	PageArticles(ctx context.Context, f domain.ArticleFilter, page, limit int) ([]domain.Article, int, error)
	SearchArticles(ctx context.Context, query string, publishedOnly bool) ([]domain.Article, error)
	IncrementArticleViews(ctx context.Context, id int) error
	CreateArticleFeedback(ctx context.Context, f domain.NewArticleFeedback) (domain.ArticleFeedback, error)
	ListArticleFeedback(ctx context.Context, articleID int) ([]domain.ArticleFeedback, error)

	// InTx runs fn against a store bound to a single transaction. The memory
	// store has no rollback; it runs callbacks one at a time.
	InTx(ctx context.Context, fn func(Store) error) error
}

// offset saturates at math.MaxInt so pages past the end stay empty instead of
// wrapping negative.
func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	if limit > 0 && page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}
