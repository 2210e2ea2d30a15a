// Package auth implements token issuance and verification, the
// authentication evaluator, the login/registration workflow, and the
// authorization policy table.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/staffdesk/staffdesk/internal/roles"
	"github.com/staffdesk/staffdesk/internal/users"
)

// DefaultRole is assigned to every newly registered account. Its absence is
// a provisioning error, not a per-request condition.
const DefaultRole = "USER"

// CredentialStore is the account collaborator the workflow depends on.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	Create(ctx context.Context, u *users.User) (*users.User, error)
}

// RoleStore is the role/assignment collaborator the workflow depends on.
type RoleStore interface {
	FindByName(ctx context.Context, name string) (*roles.Role, error)
	NamesForUser(ctx context.Context, userID int64) ([]string, error)
	Assign(ctx context.Context, userID, roleID int64) (*roles.Assignment, error)
}

// Service orchestrates login and registration. It holds no mutable state;
// concurrent requests share only the codec and the configured TTL.
type Service struct {
	accounts CredentialStore
	roles    RoleStore
	codec    *Codec
	tokenTTL time.Duration
}

// NewService constructs the auth workflow service.
func NewService(accounts CredentialStore, roleStore RoleStore, codec *Codec, tokenTTL time.Duration) *Service {
	return &Service{accounts: accounts, roles: roleStore, codec: codec, tokenTTL: tokenTTL}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Username  string
	Roles     []string
}

// NormalizeEmail is the canonical account-key form: trimmed lowercase.
// Registration stores it and every lookup applies it, so the email casing a
// client happens to send never affects matching.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Login validates credentials and issues a token carrying the account's
// role names. Unknown email, disabled account and wrong password all return
// ErrInvalidCredentials so the caller cannot distinguish them.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeFailure(err)
	}
	if !account.Enabled {
		return nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(account.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	roleNames, err := s.roles.NamesForUser(ctx, account.ID)
	if err != nil {
		return nil, storeFailure(err)
	}
	token, expiresAt, err := s.codec.Issue(account.Email, roleNames, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  account.Name,
		Roles:     roleNames,
	}, nil
}

// Registration is a candidate account. Password is plaintext on input and
// hashed before anything is persisted.
type Registration struct {
	Name       string
	Email      string
	Password   string
	Department string
}

// Register creates an account with the default USER role. The returned User
// still carries its password hash for internal use; rendering layers rely
// on the json:"-" tag to scrub it from responses.
func (s *Service) Register(ctx context.Context, reg Registration) (*users.User, error) {
	email := NormalizeEmail(reg.Email)

	_, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case errors.Is(err, users.ErrNotFound):
	default:
		return nil, storeFailure(err)
	}

	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.Create(ctx, &users.User{
		Name:         reg.Name,
		Email:        email,
		PasswordHash: hash,
		Department:   reg.Department,
		Enabled:      true,
	})
	if err != nil {
		// Two racing registrations can both pass the existence check; the
		// unique index decides the winner.
		if errors.Is(err, users.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, storeFailure(err)
	}

	role, err := s.roles.FindByName(ctx, DefaultRole)
	if err != nil {
		if errors.Is(err, roles.ErrNotFound) {
			return nil, fmt.Errorf("%w: default role %q is not provisioned", ErrRoleNotFound, DefaultRole)
		}
		return nil, storeFailure(err)
	}
	if _, err := s.roles.Assign(ctx, account.ID, role.ID); err != nil {
		return nil, storeFailure(err)
	}
	return account, nil
}

// UserRoles returns the role names for an email, or an empty list when the
// account does not exist. It is a lookup helper, not an authorization check.
func (s *Service) UserRoles(ctx context.Context, email string) ([]string, error) {
	account, err := s.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, nil
		}
		return nil, storeFailure(err)
	}
	names, err := s.roles.NamesForUser(ctx, account.ID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return names, nil
}

// storeFailure tags unexpected collaborator errors. The workflow never
// retries; retry policy belongs to the store client.
func storeFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
