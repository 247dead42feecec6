package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUnknownUsername    = errors.New("incorrect username")
	ErrWrongPassword      = errors.New("incorrect password")
	ErrNotAuthenticated   = errors.New("not authenticated")
)
