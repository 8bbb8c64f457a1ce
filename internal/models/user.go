package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicate is returned by storage when a write violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID `json:"id" db:"user_id"`            // Primary key
	Name         string    `json:"name" db:"name"`             // Display name
	Email        string    `json:"email" db:"email"`           // Unique, lower-cased email
	PasswordHash string    `json:"-" db:"password_hash"`       // bcrypt hash
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // Registration timestamp
}

// PublicUser is the projection of a user that leaves the server.
// swagger:model PublicUser
type PublicUser struct {
	// User id
	// example: 3f2c1d9e-5a4b-4c3d-8e7f-1a2b3c4d5e6f
	ID uuid.UUID `json:"id"`

	// Display name
	// example: Alice
	Name string `json:"name"`

	// Email
	// example: alice@example.com
	Email string `json:"email"`
}

// Public returns the projection of u safe to send to clients.
func (u *UserDB) Public() *PublicUser {
	return &PublicUser{
		ID:    u.UserID,
		Name:  u.Name,
		Email: u.Email,
	}
}
