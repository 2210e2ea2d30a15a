// Package users implements the account store and account CRUD operations.
package users

import (
	"errors"
	"time"
)

// User is a stored account. PasswordHash never serializes: the json tag
// guarantees it is scrubbed from any rendered response.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Department   string    `json:"department"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrNotFound  = errors.New("users: not found")
	ErrDuplicate = errors.New("users: email already exists")
)

// Update carries the mutable profile fields. Password and enabled flag
// change through dedicated flows, not profile updates.
type Update struct {
	Name       string
	Email      string
	Department string
}
