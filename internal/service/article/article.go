// Package article implements the knowledge base: markdown articles written by
// staff, read by everyone, with per-reader helpful/unhelpful feedback.
//
// Callers without article:write only ever see published articles; anything
// else is reported as not found.
package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/ticket"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type UpdateRequest = domain.ArticlePatch

type ListQuery struct {
	Status   domain.ArticleStatus
	Category string
	AuthorID int
	Page     int
	Limit    int
}

type FeedbackRequest struct {
	Helpful *bool   `json:"helpful"`
	Comment *string `json:"comment"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, auth reqctx.AuthContext, q ListQuery) (domain.ArticlePage, error)
	Search(ctx context.Context, auth reqctx.AuthContext, q string) ([]domain.Article, error)
	// Get counts a view and returns the article with its rendered body.
	Get(ctx context.Context, auth reqctx.AuthContext, id int) (domain.ArticleView, error)
	Create(ctx context.Context, auth reqctx.AuthContext, req CreateRequest) (domain.Article, error)
	Update(ctx context.Context, auth reqctx.AuthContext, id int, req UpdateRequest) (domain.Article, error)
	Publish(ctx context.Context, auth reqctx.AuthContext, id int) (domain.Article, error)
	Feedback(ctx context.Context, auth reqctx.AuthContext, id int, req FeedbackRequest) (domain.ArticleFeedback, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type articleService struct {
	store store.Store
	auth  authorize.IAuthorization
}

func New(s store.Store, auth authorize.IAuthorization) Service {
	return &articleService{store: s, auth: auth}
}

func (s *articleService) List(ctx context.Context, auth reqctx.AuthContext, q ListQuery) (domain.ArticlePage, error) {
	if q.Status != "" && !q.Status.Valid() {
		return domain.ArticlePage{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArticle, q.Status)
	}
	staff, err := s.isStaff(ctx, auth)
	if err != nil {
		return domain.ArticlePage{}, err
	}
	page, limit := ticket.NormalizePage(q.Page, q.Limit)

	f := domain.ArticleFilter{Status: q.Status, Category: q.Category, AuthorID: q.AuthorID}
	if !staff {
		if f.Status != "" && f.Status != domain.ArticlePublished {
			return domain.ArticlePage{Articles: []domain.Article{}, Pagination: domain.NewPagination(0, page, limit)}, nil
		}
		f.Status = domain.ArticlePublished
	}

	articles, total, err := s.store.PageArticles(ctx, f, page, limit)
	if err != nil {
		return domain.ArticlePage{}, fmt.Errorf("page articles: %w", err)
	}
	return domain.ArticlePage{Articles: articles, Pagination: domain.NewPagination(total, page, limit)}, nil
}

func (s *articleService) Search(ctx context.Context, auth reqctx.AuthContext, q string) ([]domain.Article, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrQueryRequired
	}
	staff, err := s.isStaff(ctx, auth)
	if err != nil {
		return nil, err
	}
	articles, err := s.store.SearchArticles(ctx, q, !staff)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return articles, nil
}

func (s *articleService) Get(ctx context.Context, auth reqctx.AuthContext, id int) (domain.ArticleView, error) {
	a, err := s.visible(ctx, auth, id)
	if err != nil {
		return domain.ArticleView{}, err
	}

	if err := s.store.IncrementArticleViews(ctx, id); err != nil {
		return domain.ArticleView{}, fmt.Errorf("count view: %w", err)
	}
	a.ViewCount++

	v := domain.ArticleView{Article: a}
	if v.HTML, err = renderMarkdown(a.Content); err != nil {
		return domain.ArticleView{}, fmt.Errorf("render article %d: %w", id, err)
	}

	author, err := s.store.GetUser(ctx, a.AuthorID)
	switch {
	case err == nil:
		v.Author = &author
	case !errors.Is(err, store.ErrNotFound):
		return domain.ArticleView{}, fmt.Errorf("load author: %w", err)
	}

	feedback, err := s.store.ListArticleFeedback(ctx, id)
	if err != nil {
		return domain.ArticleView{}, fmt.Errorf("list feedback: %w", err)
	}
	for _, fb := range feedback {
		if fb.Helpful {
			v.Feedback.Helpful++
		} else {
			v.Feedback.Unhelpful++
		}
	}
	return v, nil
}

func (s *articleService) Create(ctx context.Context, auth reqctx.AuthContext, req CreateRequest) (domain.Article, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	switch {
	case req.Title == "":
		return domain.Article{}, fmt.Errorf("%w: title is required", ErrInvalidArticle)
	case strings.TrimSpace(req.Content) == "":
		return domain.Article{}, fmt.Errorf("%w: content is required", ErrInvalidArticle)
	case req.Category == "":
		return domain.Article{}, fmt.Errorf("%w: category is required", ErrInvalidArticle)
	}

	a, err := s.store.CreateArticle(ctx, domain.NewArticle{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		AuthorID: auth.UserID,
	})
	if err != nil {
		return domain.Article{}, fmt.Errorf("create article: %w", err)
	}
	slog.Info("article: created", "article_id", a.ID, "author_id", auth.UserID)
	return a, nil
}

func (s *articleService) Update(ctx context.Context, _ reqctx.AuthContext, id int, req UpdateRequest) (domain.Article, error) {
	switch {
	case req.Status != nil && !req.Status.Valid():
		return domain.Article{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArticle, *req.Status)
	case req.Title != nil && strings.TrimSpace(*req.Title) == "":
		return domain.Article{}, fmt.Errorf("%w: title cannot be blank", ErrInvalidArticle)
	case req.Content != nil && strings.TrimSpace(*req.Content) == "":
		return domain.Article{}, fmt.Errorf("%w: content cannot be blank", ErrInvalidArticle)
	case req.Category != nil && strings.TrimSpace(*req.Category) == "":
		return domain.Article{}, fmt.Errorf("%w: category cannot be blank", ErrInvalidArticle)
	}

	a, err := s.store.UpdateArticle(ctx, id, req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Article{}, ErrNotFound
		}
		return domain.Article{}, fmt.Errorf("update article: %w", err)
	}
	return a, nil
}

func (s *articleService) Publish(ctx context.Context, auth reqctx.AuthContext, id int) (domain.Article, error) {
	published := domain.ArticlePublished
	return s.Update(ctx, auth, id, UpdateRequest{Status: &published})
}

func (s *articleService) Feedback(ctx context.Context, auth reqctx.AuthContext, id int, req FeedbackRequest) (domain.ArticleFeedback, error) {
	if req.Helpful == nil {
		return domain.ArticleFeedback{}, fmt.Errorf("%w: helpful is required", ErrInvalidFeedback)
	}
	if _, err := s.visible(ctx, auth, id); err != nil {
		return domain.ArticleFeedback{}, err
	}

	in := domain.NewArticleFeedback{ArticleID: id, Helpful: *req.Helpful}
	if !auth.IsZero() {
		uid := auth.UserID
		in.UserID = &uid
	}
	if req.Comment != nil {
		if c := strings.TrimSpace(*req.Comment); c != "" {
			in.Comment = &c
		}
	}

	fb, err := s.store.CreateArticleFeedback(ctx, in)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ArticleFeedback{}, ErrNotFound
		}
		return domain.ArticleFeedback{}, fmt.Errorf("create feedback: %w", err)
	}
	return fb, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (s *articleService) isStaff(ctx context.Context, auth reqctx.AuthContext) (bool, error) {
	ok, err := s.auth.Authorize(ctx, auth.Role, authorize.PermArticleWrite)
	if err != nil {
		return false, fmt.Errorf("authorize: %w", err)
	}
	return ok, nil
}

// visible loads an article, hiding unpublished ones from non-staff callers.
func (s *articleService) visible(ctx context.Context, auth reqctx.AuthContext, id int) (domain.Article, error) {
	a, err := s.store.GetArticle(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Article{}, ErrNotFound
		}
		return domain.Article{}, fmt.Errorf("get article: %w", err)
	}
	if a.Status == domain.ArticlePublished {
		return a, nil
	}
	staff, err := s.isStaff(ctx, auth)
	if err != nil {
		return domain.Article{}, err
	}
	if !staff {
		return domain.Article{}, ErrNotFound
	}
	return a, nil
}
