package domain

import "time"

// User is an administrative principal for the management API.
// Accounts are provisioned out-of-band (cmd/seed); the API only
// authenticates against them.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Argon2id encoded, never serialized
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
