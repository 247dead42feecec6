package user

import "errors"

var (
	ErrInvalidUser        = errors.New("invalid user data")
	ErrInvalidInvite      = errors.New("invalid invite data")
	ErrUsernameExists     = errors.New("username is already in use")
	ErrEmailAlreadyExists = errors.New("email address is already in use")
)
