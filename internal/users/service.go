package users

import (
	"context"
	"log/slog"
)

const searchLimit = 10

// Notifier delivers account notifications without blocking the caller.
type Notifier interface {
	Welcome(email string)
}

// Service wraps account business rules around the repository.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a Service. The notifier may be nil when
// notifications are disabled.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Create persists a new account and fires a welcome notification. The
// PasswordHash on the candidate must already be hashed by the caller.
func (s *Service) Create(ctx context.Context, u *User) (*User, error) {
	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		// Fire and forget; delivery failures never fail the request.
		s.notifier.Welcome(created.Email)
	}
	return created, nil
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update replaces the mutable profile fields of an existing account.
func (s *Service) Update(ctx context.Context, id int64, upd Update) (*User, error) {
	return s.repo.Update(ctx, id, upd)
}

// Delete removes an account. Missing ids are a no-op success.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// ByDepartment lists accounts in a department, skipping nameless rows.
func (s *Service) ByDepartment(ctx context.Context, department string) ([]*User, error) {
	list, err := s.repo.ListByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}
	filtered := list[:0]
	for _, u := range list {
		if u.Name != "" {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

// Search finds accounts whose name contains the pattern, capped at ten
// results.
func (s *Service) Search(ctx context.Context, name string) ([]*User, error) {
	return s.repo.SearchByName(ctx, "%"+name+"%", searchLimit)
}

// CountByDepartment returns the number of accounts in a department.
func (s *Service) CountByDepartment(ctx context.Context, department string) (int64, error) {
	return s.repo.CountByDepartment(ctx, department)
}

// EmailsByDepartment returns the distinct, sorted emails of a department.
func (s *Service) EmailsByDepartment(ctx context.Context, department string) ([]string, error) {
	return s.repo.EmailsByDepartment(ctx, department)
}
