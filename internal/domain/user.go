package domain

import "github.com/Alijeyrad/helpdesk_backend/pkg/authorize"

// User is both the stored record and its public projection: Password is
// never serialized.
type User struct {
	ID        int            `json:"id"`
	Username  string         `json:"username"`
	Password  string         `json:"-"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      authorize.Role `json:"role"`
	AvatarURL *string        `json:"avatarUrl"`
}

// NewUser is the input to Store.CreateUser.
type NewUser struct {
	Username  string
	Password  string
	Name      string
	Email     string
	Role      authorize.Role
	AvatarURL *string
}
