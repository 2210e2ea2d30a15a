// Package roles implements role definitions and user-to-role assignments.
package roles

import "errors"

// Role is an administratively managed grant. Identity is immutable once
// assigned to a user.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Assignment links a user to a role. At most one assignment exists per
// (user, role) pair, enforced by a unique index.
type Assignment struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	RoleID int64 `json:"role_id"`
}

var (
	ErrNotFound            = errors.New("roles: not found")
	ErrDuplicateRole       = errors.New("roles: name already exists")
	ErrDuplicateAssignment = errors.New("roles: user already has this role")
)
