package article

import "errors"

var (
	ErrNotFound        = errors.New("article not found")
	ErrInvalidArticle  = errors.New("invalid article data")
	ErrInvalidFeedback = errors.New("invalid feedback data")
	ErrQueryRequired   = errors.New("search query is required")
)
