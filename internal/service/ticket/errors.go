package ticket

import "errors"

var (
	ErrNotFound       = errors.New("ticket not found")
	ErrForbidden      = errors.New("not allowed to modify this ticket")
	ErrInvalidTicket  = errors.New("invalid ticket data")
	ErrInvalidUpdate  = errors.New("invalid update data")
	ErrInvalidComment = errors.New("invalid comment data")
	ErrQueryRequired  = errors.New("search query is required")
)
