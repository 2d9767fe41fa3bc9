package core

import (
	"context"
	"errors"
	"time"
)

// User is an operator who can obtain an API token.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ErrInvalidCredentials is returned for an unknown user, an inactive user or a wrong
// password alike, so callers cannot tell which usernames exist.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserService looks up users and checks their credentials.
type UserService interface {
	// Authenticate returns the active user whose password matches, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// CreateUser stores a user with a bcrypt hash of password. An existing username is
	// updated in place (password, role, reactivated).
	CreateUser(ctx context.Context, username, password, role string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID int) (*User, error)
}
