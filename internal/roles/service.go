package roles

import (
	"context"
	"errors"
)

// Service wraps role management rules: uniqueness by name and duplicate
// checks on assignment.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// All returns every role definition.
func (s *Service) All(ctx context.Context) ([]*Role, error) {
	return s.repo.List(ctx)
}

// Get fetches a role by id.
func (s *Service) Get(ctx context.Context, id int64) (*Role, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByName fetches a role by its unique name.
func (s *Service) GetByName(ctx context.Context, name string) (*Role, error) {
	return s.repo.FindByName(ctx, name)
}

// UserRoles lists the roles assigned to a user.
func (s *Service) UserRoles(ctx context.Context, userID int64) ([]*Role, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Create adds a role, rejecting duplicate names. The check-then-insert is
// not atomic; the unique index on roles.name backs it up.
func (s *Service) Create(ctx context.Context, role *Role) (*Role, error) {
	_, err := s.repo.FindByName(ctx, role.Name)
	switch {
	case err == nil:
		return nil, ErrDuplicateRole
	case errors.Is(err, ErrNotFound):
	default:
		return nil, err
	}
	return s.repo.Create(ctx, role)
}

// Assign links a role to a user, rejecting duplicates rather than silently
// merging them.
func (s *Service) Assign(ctx context.Context, userID, roleID int64) (*Assignment, error) {
	exists, err := s.repo.AssignmentExists(ctx, userID, roleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAssignment
	}
	return s.repo.Assign(ctx, userID, roleID)
}

// Remove unlinks a role from a user. Removing an absent assignment succeeds.
func (s *Service) Remove(ctx context.Context, userID, roleID int64) error {
	return s.repo.Remove(ctx, userID, roleID)
}
