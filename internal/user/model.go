package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	Address      *string   `json:"address"`
	Phone        *string   `json:"phone"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateParams holds the columns written when a user registers.
type CreateParams struct {
	Username     string
	Email        string
	PasswordHash string
	Address      *string
	Phone        *string
}

// UpdateParams holds the profile fields to change. Nil fields are left as they are.
type UpdateParams struct {
	Username *string
	Email    *string
	Address  *string
	Phone    *string
}

// Summary is the reduced projection returned by delete and status toggles.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	IsActive *bool     `json:"is_active,omitempty"`
}
