package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Alijeyrad/helpdesk_backend/pkg/constants"
)

type Ticket struct {
	ID           int            `json:"id"`
	Subject      string         `json:"subject"`
	Description  string         `json:"description"`
	Status       TicketStatus   `json:"status"`
	Priority     TicketPriority `json:"priority"`
	Category     string         `json:"category"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	CreatedByID  int            `json:"createdById"`
	AssignedToID *int           `json:"assignedToId"`
}

// Ref renders the ticket id the way activity messages show it, e.g. #TK-12.
func (t Ticket) Ref() string {
	return TicketRef(t.ID)
}

func TicketRef(id int) string {
	return constants.TicketDisplayPrefix + strconv.Itoa(id)
}

// NewTicket is the input to Store.CreateTicket. Empty Status/Priority fall
// back to open/medium.
type NewTicket struct {
	Subject      string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	Category     string
	CreatedByID  int
	AssignedToID *int
}

// TicketPatch carries only the fields a caller sent. An empty patch is valid
// and only touches updatedAt.
type TicketPatch struct {
	Subject      *string         `json:"subject"`
	Description  *string         `json:"description"`
	Status       *TicketStatus   `json:"status"`
	Priority     *TicketPriority `json:"priority"`
	Category     *string         `json:"category"`
	AssignedToID NullableInt     `json:"assignedToId"`
}

// Apply returns a copy of t with the patch merged in. Timestamps are left to
// the store.
func (t Ticket) Apply(p TicketPatch) Ticket {
	if p.Subject != nil {
		t.Subject = *p.Subject
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.AssignedToID.Set {
		t.AssignedToID = p.AssignedToID.Ptr()
	}
	return t
}

// NullableInt distinguishes an absent JSON field (Set=false) from an explicit
// null (Set=true, Valid=false).
type NullableInt struct {
	Set   bool
	Valid bool
	Value int
}

func NullInt() NullableInt         { return NullableInt{Set: true} }
func SomeInt(v int) NullableInt    { return NullableInt{Set: true, Valid: true, Value: v} }
func (n NullableInt) IsNull() bool { return n.Set && !n.Valid }

// Ptr returns nil for null or unset, a fresh pointer otherwise.
func (n NullableInt) Ptr() *int {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

func (n *NullableInt) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		n.Value = 0
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n NullableInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

type Comment struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	TicketID  int       `json:"ticketId"`
	UserID    int       `json:"userId"`
}

type NewComment struct {
	Content  string
	TicketID int
	UserID   int
}

type Activity struct {
	ID        int          `json:"id"`
	Type      ActivityType `json:"type"`
	TicketID  *int         `json:"ticketId"`
	UserID    int          `json:"userId"`
	Message   string       `json:"message"`
	CreatedAt time.Time    `json:"createdAt"`
}

type NewActivity struct {
	Type     ActivityType
	TicketID *int
	UserID   int
	Message  string
}
