package notification

import "errors"

var (
	ErrMalformedEvent = errors.New("malformed activity event")
	ErrNoTicket       = errors.New("activity has no ticket")
)
