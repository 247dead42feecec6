package domain

type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

var TicketStatuses = []TicketStatus{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

var TicketPriorities = []TicketPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type ActivityType string

const (
	ActivityCreated   ActivityType = "created"
	ActivityUpdated   ActivityType = "updated"
	ActivityCommented ActivityType = "commented"
	ActivityAssigned  ActivityType = "assigned"
	ActivityResolved  ActivityType = "resolved"
	ActivityClosed    ActivityType = "closed"
	ActivityReopened  ActivityType = "reopened"
	ActivityEscalated ActivityType = "escalated"
)

var ActivityTypes = []ActivityType{
	ActivityCreated, ActivityUpdated, ActivityCommented, ActivityAssigned,
	ActivityResolved, ActivityClosed, ActivityReopened, ActivityEscalated,
}

func (t ActivityType) Valid() bool {
	for _, v := range ActivityTypes {
		if v == t {
			return true
		}
	}
	return false
}

type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticlePublished ArticleStatus = "published"
	ArticleArchived  ArticleStatus = "archived"
)

var ArticleStatuses = []ArticleStatus{ArticleDraft, ArticlePublished, ArticleArchived}

func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleDraft, ArticlePublished, ArticleArchived:
		return true
	}
	return false
}

// Strings converts a typed enum list into its raw values, e.g. for schema enums.
func Strings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
