package domain

import "time"

type Article struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Category    string        `json:"category"`
	Status      ArticleStatus `json:"status"`
	AuthorID    int           `json:"authorId"`
	ViewCount   int           `json:"viewCount"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	PublishedAt *time.Time    `json:"publishedAt"`
}

type NewArticle struct {
	Title    string
	Content  string
	Category string
	AuthorID int
}

type ArticlePatch struct {
	Title    *string        `json:"title"`
	Content  *string        `json:"content"`
	Category *string        `json:"category"`
	Status   *ArticleStatus `json:"status"`
}

// Apply merges the patch. The first transition into published stamps
// PublishedAt with now; later edits keep the original date.
func (a Article) Apply(p ArticlePatch, now time.Time) Article {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Status != nil {
		a.Status = *p.Status
		if a.Status == ArticlePublished && a.PublishedAt == nil {
			a.PublishedAt = &now
		}
	}
	return a
}

// ArticleFilter narrows PageArticles. Zero values mean "any".
type ArticleFilter struct {
	Status   ArticleStatus
	Category string
	AuthorID int
}

type ArticleFeedback struct {
	ID        int       `json:"id"`
	ArticleID int       `json:"articleId"`
	UserID    *int      `json:"userId"`
	Helpful   bool      `json:"helpful"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewArticleFeedback struct {
	ArticleID int
	UserID    *int
	Helpful   bool
	Comment   *string
}
