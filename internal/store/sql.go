package store

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

var (
	userFields     = []string{"id", "username", "password", "name", "email", "role", "avatar_url"}
	ticketFields   = []string{"id", "subject", "description", "status", "priority", "category", "created_at", "updated_at", "created_by_id", "assigned_to_id"}
	commentFields  = []string{"id", "content", "created_at", "ticket_id", "user_id"}
	activityFields = []string{"id", "type", "message", "created_at", "ticket_id", "user_id"}
	articleFields  = []string{"id", "title", "content", "category", "status", "view_count", "created_at", "updated_at", "published_at", "author_id"}
	feedbackFields = []string{"id", "helpful", "comment", "created_at", "article_id", "user_id"}
)

// SQL is the relational Store. It speaks to the database through ent's
// dialect/sql builder and driver, so postgres, mysql and sqlite share one
// implementation.
type SQL struct {
	drv   *entsql.Driver
	conn  dialect.ExecQuerier
	clock Clock
}

var _ Store = (*SQL)(nil)

func NewSQL(drv *entsql.Driver, clock Clock) *SQL {
	return &SQL{drv: drv, conn: drv, clock: clock}
}

func (s *SQL) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

func (s *SQL) InTx(ctx context.Context, fn func(Store) error) error {
	if _, nested := s.conn.(dialect.Tx); nested {
		return fn(s)
	}

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	if err := fn(&SQL{drv: s.drv, conn: tx, clock: s.clock}); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, fmt.Errorf("store: rollback: %w", rerr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *SQL) GetUser(ctx context.Context, id int) (domain.User, error) {
	return s.oneUser(ctx, entsql.EQ("id", id), fmt.Sprintf("user %d", id))
}

func (s *SQL) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.oneUser(ctx, entsql.EQ("username", username), fmt.Sprintf("user %q", username))
}

func (s *SQL) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.oneUser(ctx, entsql.EQ("email", email), fmt.Sprintf("user %q", email))
}

func (s *SQL) oneUser(ctx context.Context, p *entsql.Predicate, what string) (domain.User, error) {
	users, err := s.users(ctx, p)
	if err != nil {
		return domain.User{}, err
	}
	if len(users) == 0 {
		return domain.User{}, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return users[0], nil
}

func (s *SQL) CreateUser(ctx context.Context, in domain.NewUser) (domain.User, error) {
	role := in.Role
	if role == "" {
		role = authorize.RoleCustomer
	}

	ins := s.builder().Insert(usersTable).
		Columns(userFields[1:]...).
		Values(in.Username, in.Password, in.Name, in.Email, string(role), nullString(in.AvatarURL))
	id, err := s.insert(ctx, ins)
	if err != nil {
		return domain.User{}, err
	}

	return domain.User{
		ID:        id,
		Username:  in.Username,
		Password:  in.Password,
		Name:      in.Name,
		Email:     in.Email,
		Role:      role,
		AvatarURL: in.AvatarURL,
	}, nil
}

func (s *SQL) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users(ctx, nil)
}

func (s *SQL) ListUsersByRole(ctx context.Context, role authorize.Role) ([]domain.User, error) {
	return s.users(ctx, entsql.EQ("role", string(role)))
}

func (s *SQL) users(ctx context.Context, p *entsql.Predicate) ([]domain.User, error) {
	b := s.builder()
	sel := b.Select(userFields...).From(b.Table(usersTable)).OrderBy(entsql.Asc("id"))
	if p != nil {
		sel.Where(p)
	}

	out := make([]domain.User, 0)
	err := s.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			u      domain.User
			role   string
			avatar stdsql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Name, &u.Email, &role, &avatar); err != nil {
			return err
		}
		u.Role = authorize.Role(role)
		u.AvatarURL = stringPtr(avatar)
		out = append(out, u)
		return nil
	})
	return out, err
}

// ---------------------------------------------------------------------------
// Tickets
// ---------------------------------------------------------------------------

func (s *SQL) CreateTicket(ctx context.Context, in domain.NewTicket) (domain.Ticket, error) {
	status := in.Status
	if status == "" {
		status = domain.StatusOpen
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	now := s.clock.now()

	ins := s.builder().Insert(ticketsTable).
		Columns(ticketFields[1:]...).
		Values(in.Subject, in.Description, string(status), string(priority), in.Category,
			now, now, in.CreatedByID, nullInt(in.AssignedToID))
	id, err := s.insert(ctx, ins)
	if err != nil {
		return domain.Ticket{}, err
	}

	return domain.Ticket{
		ID:           id,
		Subject:      in.Subject,
		Description:  in.Description,
		Status:       status,
		Priority:     priority,
		Category:     in.Category,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedByID:  in.CreatedByID,
		AssignedToID: copyInt(in.AssignedToID),
	}, nil
}

func (s *SQL) GetTicket(ctx context.Context, id int) (domain.Ticket, error) {
	tickets, err := s.tickets(ctx, entsql.EQ("id", id), 0, 0)
	if err != nil {
		return domain.Ticket{}, err
	}
	if len(tickets) == 0 {
		return domain.Ticket{}, fmt.Errorf("ticket %d: %w", id, ErrNotFound)
	}
	return tickets[0], nil
}

func (s *SQL) UpdateTicket(ctx context.Context, id int, p domain.TicketPatch) (domain.Ticket, error) {
	current, err := s.GetTicket(ctx, id)
	if err != nil {
		return domain.Ticket{}, err
	}

	updated := current.Apply(p)
	updated.UpdatedAt = s.clock.bump(current.UpdatedAt)

	upd := s.builder().Update(ticketsTable).
		Set("subject", updated.Subject).
		Set("description", updated.Description).
		Set("status", string(updated.Status)).
		Set("priority", string(updated.Priority)).
		Set("category", updated.Category).
		Set("updated_at", updated.UpdatedAt).
		Where(entsql.EQ("id", id))
	if updated.AssignedToID == nil {
		upd.SetNull("assigned_to_id")
	} else {
		upd.Set("assigned_to_id", *updated.AssignedToID)
	}

	if _, err := s.exec(ctx, upd); err != nil {
		return domain.Ticket{}, err
	}
	return updated, nil
}

func (s *SQL) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets(ctx, nil, 0, 0)
}

func (s *SQL) ListTicketsByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	return s.tickets(ctx, entsql.EQ("status", string(status)), 0, 0)
}

func (s *SQL) ListTicketsByPriority(ctx context.Context, priority domain.TicketPriority) ([]domain.Ticket, error) {
	return s.tickets(ctx, entsql.EQ("priority", string(priority)), 0, 0)
}

func (s *SQL) ListTicketsByAssignee(ctx context.Context, userID int) ([]domain.Ticket, error) {
	return s.tickets(ctx, entsql.EQ("assigned_to_id", userID), 0, 0)
}

func (s *SQL) ListTicketsByCreator(ctx context.Context, userID int) ([]domain.Ticket, error) {
	return s.tickets(ctx, entsql.EQ("created_by_id", userID), 0, 0)
}

func (s *SQL) PageTickets(ctx context.Context, page, limit int) ([]domain.Ticket, int, error) {
	total, err := s.count(ctx, ticketsTable, nil)
	if err != nil {
		return nil, 0, err
	}
	tickets, err := s.tickets(ctx, nil, offset(page, limit), limit)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (s *SQL) SearchTickets(ctx context.Context, query string) ([]domain.Ticket, error) {
	return s.tickets(ctx, entsql.Or(
		entsql.ContainsFold("subject", query),
		entsql.ContainsFold("description", query),
		entsql.ContainsFold("category", query),
	), 0, 0)
}

func (s *SQL) CountComments(ctx context.Context, ticketID int) (int, error) {
	return s.count(ctx, commentsTable, entsql.EQ("ticket_id", ticketID))
}

// tickets selects newest first. A zero limit means no limit.
func (s *SQL) tickets(ctx context.Context, p *entsql.Predicate, off, limit int) ([]domain.Ticket, error) {
	b := s.builder()
	sel := b.Select(ticketFields...).From(b.Table(ticketsTable)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if p != nil {
		sel.Where(p)
	}
	if limit > 0 {
		sel.Limit(limit).Offset(off)
	}

	out := make([]domain.Ticket, 0)
	err := s.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			t        domain.Ticket
			status   string
			priority string
			assigned stdsql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Subject, &t.Description, &status, &priority, &t.Category,
			&t.CreatedAt, &t.UpdatedAt, &t.CreatedByID, &assigned); err != nil {
			return err
		}
		t.Status = domain.TicketStatus(status)
		t.Priority = domain.TicketPriority(priority)
		t.CreatedAt = t.CreatedAt.UTC()
		t.UpdatedAt = t.UpdatedAt.UTC()
		t.AssignedToID = intPtr(assigned)
		out = append(out, t)
		return nil
	})
	return out, err
}

// ---------------------------------------------------------------------------
// Comments & activities
// ---------------------------------------------------------------------------

func (s *SQL) CreateComment(ctx context.Context, in domain.NewComment) (domain.Comment, error) {
	if _, err := s.GetTicket(ctx, in.TicketID); err != nil {
		return domain.Comment{}, err
	}

	now := s.clock.now()
	ins := s.builder().Insert(commentsTable).
		Columns(commentFields[1:]...).
		Values(in.Content, now, in.TicketID, in.UserID)
	id, err := s.insert(ctx, ins)
	if err != nil {
		return domain.Comment{}, err
	}
	return domain.Comment{ID: id, Content: in.Content, CreatedAt: now, TicketID: in.TicketID, UserID: in.UserID}, nil
}

func (s *SQL) ListComments(ctx context.Context, ticketID int) ([]domain.Comment, error) {
	b := s.builder()
	sel := b.Select(commentFields...).From(b.Table(commentsTable)).
		Where(entsql.EQ("ticket_id", ticketID)).
		OrderBy(entsql.Asc("created_at"), entsql.Asc("id"))

	out := make([]domain.Comment, 0)
	err := s.query(ctx, sel, func(rows *entsql.Rows) error {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.Content, &c.CreatedAt, &c.TicketID, &c.UserID); err != nil {
			return err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
		return nil
	})
	return out, err
}

func (s *SQL) CreateActivity(ctx context.Context, in domain.NewActivity) (domain.Activity, error) {
	now := s.clock.now()
	ins := s.builder().Insert(activitiesTable).
		Columns(activityFields[1:]...).
		Values(string(in.Type), in.Message, now, nullInt(in.TicketID), in.UserID)
	id, err := s.insert(ctx, ins)
	if err != nil {
		return domain.Activity{}, err
	}
	return domain.Activity{
		ID:        id,
		Type:      in.Type,
		TicketID:  copyInt(in.TicketID),
		UserID:    in.UserID,
		Message:   in.Message,
		CreatedAt: now,
	}, nil
}

func (s *SQL) ListActivitiesByTicket(ctx context.Context, ticketID int) ([]domain.Activity, error) {
	return s.activities(ctx, entsql.EQ("ticket_id", ticketID), 0)
}

func (s *SQL) ListRecentActivities(ctx context.Context, limit int) ([]domain.Activity, error) {
	return s.activities(ctx, nil, limit)
}

func (s *SQL) activities(ctx context.Context, p *entsql.Predicate, limit int) ([]domain.Activity, error) {
	b := s.builder()
	sel := b.Select(activityFields...).From(b.Table(activitiesTable)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if p != nil {
		sel.Where(p)
	}
	if limit > 0 {
		sel.Limit(limit)
	}

	out := make([]domain.Activity, 0)
	err := s.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			a      domain.Activity
			kind   string
			ticket stdsql.NullInt64
		)
		if err := rows.Scan(&a.ID, &kind, &a.Message, &a.CreatedAt, &ticket, &a.UserID); err != nil {
			return err
		}
		a.Type = domain.ActivityType(kind)
		a.CreatedAt = a.CreatedAt.UTC()
		a.TicketID = intPtr(ticket)
		out = append(out, a)
		return nil
	})
	return out, err
}

// ---------------------------------------------------------------------------
// Articles
// ---------------------------------------------------------------------------

func (s *SQL) CreateArticle(ctx context.Context, in domain.NewArticle) (domain.Article, error) {
	now := s.clock.now()
	ins := s.builder().Insert(articlesTable).
		Columns(articleFields[1:]...).
		Values(in.Title, in.Content, in.Category, string(domain.ArticleDraft), 0, now, now, nil, in.AuthorID)
	id, err := s.insert(ctx, ins)
	if err != nil {
		return domain.Article{}, err
	}
	return domain.Article{
		ID:        id,
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		Status:    domain.ArticleDraft,
		AuthorID:  in.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQL) GetArticle(ctx context.Context, id int) (domain.Article, error) {
	articles, err := s.articles(ctx, entsql.EQ("id", id), 0, 0)
	if err != nil {
		return domain.Article{}, err
	}
	if len(articles) == 0 {
		return domain.Article{}, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return articles[0], nil
}

func (s *SQL) UpdateArticle(ctx context.Context, id int, p domain.ArticlePatch) (domain.Article, error) {
	current, err := s.GetArticle(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}

	updated := current.Apply(p, s.clock.now())
	updated.UpdatedAt = s.clock.bump(current.UpdatedAt)

	upd := s.builder().Update(articlesTable).
		Set("title", updated.Title).
		Set("content", updated.Content).
		Set("category", updated.Category).
		Set("status", string(updated.Status)).
		Set("updated_at", updated.UpdatedAt).
		Where(entsql.EQ("id", id))
	if updated.PublishedAt != nil {
		upd.Set("published_at", *updated.PublishedAt)
	}

	if _, err := s.exec(ctx, upd); err != nil {
		return domain.Article{}, err
	}
	return updated, nil
}

func (s *SQL) PageArticles(ctx context.Context, f domain.ArticleFilter, page, limit int) ([]domain.Article, int, error) {
	var preds []*entsql.Predicate
	if f.Status != "" {
		preds = append(preds, entsql.EQ("status", string(f.Status)))
	}
	if f.Category != "" {
		preds = append(preds, entsql.EQ("category", f.Category))
	}
	if f.AuthorID != 0 {
		preds = append(preds, entsql.EQ("author_id", f.AuthorID))
	}
	var p *entsql.Predicate
	if len(preds) > 0 {
		p = entsql.And(preds...)
	}

	total, err := s.count(ctx, articlesTable, p)
	if err != nil {
		return nil, 0, err
	}
	articles, err := s.articles(ctx, p, offset(page, limit), limit)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (s *SQL) SearchArticles(ctx context.Context, query string, publishedOnly bool) ([]domain.Article, error) {
	p := entsql.Or(
		entsql.ContainsFold("title", query),
		entsql.ContainsFold("content", query),
		entsql.ContainsFold("category", query),
	)
	if publishedOnly {
		p = entsql.And(entsql.EQ("status", string(domain.ArticlePublished)), p)
	}
	return s.articles(ctx, p, 0, 0)
}

func (s *SQL) IncrementArticleViews(ctx context.Context, id int) error {
	upd := s.builder().Update(articlesTable).
		Add("view_count", 1).
		Where(entsql.EQ("id", id))
	res, err := s.exec(ctx, upd)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQL) CreateArticleFeedback(ctx context.Context, in domain.NewArticleFeedback) (domain.ArticleFeedback, error) {
	if _, err := s.GetArticle(ctx, in.ArticleID); err != nil {
		return domain.ArticleFeedback{}, err
	}

	now := s.clock.now()
	ins := s.builder().Insert(feedbackTable).
		Columns(feedbackFields[1:]...).
		Values(in.Helpful, nullString(in.Comment), now, in.ArticleID, nullInt(in.UserID))
	id, err := s.insert(ctx, ins)
	if err != nil {
		return domain.ArticleFeedback{}, err
	}
	return domain.ArticleFeedback{
		ID:        id,
		ArticleID: in.ArticleID,
		UserID:    copyInt(in.UserID),
		Helpful:   in.Helpful,
		Comment:   in.Comment,
		CreatedAt: now,
	}, nil
}

func (s *SQL) ListArticleFeedback(ctx context.Context, articleID int) ([]domain.ArticleFeedback, error) {
	b := s.builder()
	sel := b.Select(feedbackFields...).From(b.Table(feedbackTable)).
		Where(entsql.EQ("article_id", articleID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))

	out := make([]domain.ArticleFeedback, 0)
	err := s.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			f       domain.ArticleFeedback
			comment stdsql.NullString
			user    stdsql.NullInt64
		)
		if err := rows.Scan(&f.ID, &f.Helpful, &comment, &f.CreatedAt, &f.ArticleID, &user); err != nil {
			return err
		}
		f.CreatedAt = f.CreatedAt.UTC()
		f.Comment = stringPtr(comment)
		f.UserID = intPtr(user)
		out = append(out, f)
		return nil
	})
	return out, err
}

func (s *SQL) articles(ctx context.Context, p *entsql.Predicate, off, limit int) ([]domain.Article, error) {
	b := s.builder()
	sel := b.Select(articleFields...).From(b.Table(articlesTable)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if p != nil {
		sel.Where(p)
	}
	if limit > 0 {
		sel.Limit(limit).Offset(off)
	}

	out := make([]domain.Article, 0)
	err := s.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			a         domain.Article
			status    string
			published stdsql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Category, &status, &a.ViewCount,
			&a.CreatedAt, &a.UpdatedAt, &published, &a.AuthorID); err != nil {
			return err
		}
		a.Status = domain.ArticleStatus(status)
		a.CreatedAt = a.CreatedAt.UTC()
		a.UpdatedAt = a.UpdatedAt.UTC()
		if published.Valid {
			t := published.Time.UTC()
			a.PublishedAt = &t
		}
		out = append(out, a)
		return nil
	})
	return out, err
}

// ---------------------------------------------------------------------------
// driver plumbing
// ---------------------------------------------------------------------------

func (s *SQL) query(ctx context.Context, sel *entsql.Selector, scan func(*entsql.Rows) error) error {
	q, args := sel.Query()
	rows := &entsql.Rows{}
	if err := s.conn.Query(ctx, q, args, rows); err != nil {
		return fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("store: scan: %w", err)
		}
	}
	return rows.Err()
}

func (s *SQL) count(ctx context.Context, table string, p *entsql.Predicate) (int, error) {
	b := s.builder()
	sel := b.Select(entsql.Count("*")).From(b.Table(table))
	if p != nil {
		sel.Where(p)
	}

	var n int
	err := s.query(ctx, sel, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	return n, err
}

// insert runs ins and returns the new row id. Postgres reports it through
// RETURNING; mysql and sqlite through LastInsertId.
func (s *SQL) insert(ctx context.Context, ins *entsql.InsertBuilder) (int, error) {
	if s.drv.Dialect() == dialect.Postgres {
		ins.Returning("id")
		q, args := ins.Query()
		rows := &entsql.Rows{}
		if err := s.conn.Query(ctx, q, args, rows); err != nil {
			return 0, execErr(err)
		}
		defer rows.Close()

		var id int
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return 0, execErr(err)
			}
			return 0, errors.New("store: insert returned no id")
		}
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("store: scan id: %w", err)
		}
		return id, nil
	}

	q, args := ins.Query()
	var res stdsql.Result
	if err := s.conn.Exec(ctx, q, args, &res); err != nil {
		return 0, execErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	return int(id), nil
}

func (s *SQL) exec(ctx context.Context, q entsql.Querier) (stdsql.Result, error) {
	query, args := q.Query()
	var res stdsql.Result
	if err := s.conn.Exec(ctx, query, args, &res); err != nil {
		return nil, execErr(err)
	}
	return res, nil
}

func execErr(err error) error {
	if sqlgraph.IsUniqueConstraintError(err) {
		return fmt.Errorf("store: %w: %v", ErrConflict, err)
	}
	return fmt.Errorf("store: exec: %w", err)
}

func nullInt(p *int) stdsql.NullInt64 {
	if p == nil {
		return stdsql.NullInt64{}
	}
	return stdsql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n stdsql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullString(p *string) stdsql.NullString {
	if p == nil {
		return stdsql.NullString{}
	}
	return stdsql.NullString{String: *p, Valid: true}
}

func stringPtr(n stdsql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}
