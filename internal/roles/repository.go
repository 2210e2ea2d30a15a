package roles

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines persistence operations for roles and assignments.
type Repository interface {
	Create(ctx context.Context, role *Role) (*Role, error)
	FindByID(ctx context.Context, id int64) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
	ListForUser(ctx context.Context, userID int64) ([]*Role, error)
	NamesForUser(ctx context.Context, userID int64) ([]string, error)
	Assign(ctx context.Context, userID, roleID int64) (*Assignment, error)
	Remove(ctx context.Context, userID, roleID int64) error
	AssignmentExists(ctx context.Context, userID, roleID int64) (bool, error)
}

// PGRepository implements Repository over PostgreSQL.
type PGRepository struct {
	db *sql.DB
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

var _ Repository = (*PGRepository)(nil)

func (r *PGRepository) Create(ctx context.Context, role *Role) (*Role, error) {
	row := r.db.QueryRowContext(ctx,
		`insert into roles(name, description) values($1, $2)
		 returning id, name, description`,
		role.Name, role.Description,
	)
	created, err := scanRole(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRole
		}
		return nil, err
	}
	return created, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Role, error) {
	row := r.db.QueryRowContext(ctx,
		`select id, name, description from roles where id = $1`, id)
	return scanRole(row)
}

func (r *PGRepository) FindByName(ctx context.Context, name string) (*Role, error) {
	row := r.db.QueryRowContext(ctx,
		`select id, name, description from roles where name = $1`, name)
	return scanRole(row)
}

func (r *PGRepository) List(ctx context.Context) ([]*Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`select id, name, description from roles order by id`)
	if err != nil {
		return nil, err
	}
	return collectRoles(rows)
}

func (r *PGRepository) ListForUser(ctx context.Context, userID int64) ([]*Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`select r.id, r.name, r.description
		 from roles r
		 join user_roles ur on ur.role_id = r.id
		 where ur.user_id = $1
		 order by r.id`, userID)
	if err != nil {
		return nil, err
	}
	return collectRoles(rows)
}

// NamesForUser returns role names in store order.
func (r *PGRepository) NamesForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`select r.name
		 from roles r
		 join user_roles ur on ur.role_id = r.id
		 where ur.user_id = $1
		 order by r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Assign inserts a user-role link. The unique index on (user_id, role_id)
// rejects duplicates even when two assignments race past the existence check.
func (r *PGRepository) Assign(ctx context.Context, userID, roleID int64) (*Assignment, error) {
	row := r.db.QueryRowContext(ctx,
		`insert into user_roles(user_id, role_id) values($1, $2)
		 returning id, user_id, role_id`,
		userID, roleID,
	)
	var a Assignment
	if err := row.Scan(&a.ID, &a.UserID, &a.RoleID); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAssignment
		}
		return nil, err
	}
	return &a, nil
}

// Remove deletes a user-role link. Removing an absent link is a no-op success.
func (r *PGRepository) Remove(ctx context.Context, userID, roleID int64) error {
	_, err := r.db.ExecContext(ctx,
		`delete from user_roles where user_id = $1 and role_id = $2`, userID, roleID)
	return err
}

func (r *PGRepository) AssignmentExists(ctx context.Context, userID, roleID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`select exists(select 1 from user_roles where user_id = $1 and role_id = $2)`,
		userID, roleID).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*Role, error) {
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func collectRoles(rows *sql.Rows) ([]*Role, error) {
	defer rows.Close()
	var res []*Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, role)
	}
	return res, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
