package domain

// Read-time projections joining base entities with their users.

type TicketView struct {
	Ticket
	CreatedBy    *User `json:"createdBy"`
	AssignedTo   *User `json:"assignedTo,omitempty"`
	CommentCount int   `json:"commentCount"`
}

type TicketDetail struct {
	Ticket
	CreatedBy  User      `json:"createdBy"`
	AssignedTo *User     `json:"assignedTo,omitempty"`
	Comments   []Comment `json:"comments"`
}

type CommentView struct {
	Comment
	User *User `json:"user"`
}

type ActivityView struct {
	Activity
	User *User `json:"user"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes totalPages as ceil(total/limit).
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

type TicketPage struct {
	Tickets    []TicketView `json:"tickets"`
	Pagination Pagination   `json:"pagination"`
}

type FeedbackStats struct {
	Helpful   int `json:"helpful"`
	Unhelpful int `json:"unhelpful"`
}

type ArticleView struct {
	Article
	Author   *User         `json:"author"`
	HTML     string        `json:"html"`
	Feedback FeedbackStats `json:"feedback"`
}

type ArticlePage struct {
	Articles   []Article  `json:"articles"`
	Pagination Pagination `json:"pagination"`
}

type Stats struct {
	Total             int `json:"total"`
	OpenCount         int `json:"openCount"`
	InProgressCount   int `json:"inProgressCount"`
	ResolvedCount     int `json:"resolvedCount"`
	ClosedCount       int `json:"closedCount"`
	HighPriorityCount int `json:"highPriorityCount"`
	ResolvedToday     int `json:"resolvedToday"`
}
