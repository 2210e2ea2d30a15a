package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id int64, upd Update) (*User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*User, error)
	ListByDepartment(ctx context.Context, department string) ([]*User, error)
	SearchByName(ctx context.Context, pattern string, limit int) ([]*User, error)
	CountByDepartment(ctx context.Context, department string) (int64, error)
	EmailsByDepartment(ctx context.Context, department string) ([]string, error)
}

const userColumns = `id, name, email, password_hash, department, enabled, created_at, updated_at`

// PGRepository implements Repository over PostgreSQL. The unique index on
// email is the real duplicate guarantee; the service-level existence check
// only produces friendlier errors.
type PGRepository struct {
	db *sql.DB
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

var _ Repository = (*PGRepository)(nil)

func (r *PGRepository) Create(ctx context.Context, u *User) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`insert into users(name, email, password_hash, department, enabled)
		 values($1, $2, $3, $4, $5)
		 returning `+userColumns,
		u.Name, u.Email, u.PasswordHash, u.Department, u.Enabled,
	)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id = $1`, id)
	return scanUser(row)
}

func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email = $1`, email)
	return scanUser(row)
}

func (r *PGRepository) Update(ctx context.Context, id int64, upd Update) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`update users
		 set name = $2, email = $3, department = $4, updated_at = now()
		 where id = $1
		 returning `+userColumns,
		id, upd.Name, upd.Email, upd.Department,
	)
	updated, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the account. Deleting a missing id is a no-op success.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `delete from users where id = $1`, id)
	return err
}

func (r *PGRepository) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx,
		`select `+userColumns+` from users order by id`)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *PGRepository) ListByDepartment(ctx context.Context, department string) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx,
		`select `+userColumns+` from users where department = $1 order by id`, department)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *PGRepository) SearchByName(ctx context.Context, pattern string, limit int) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx,
		`select `+userColumns+` from users where name ilike $1 order by id limit $2`,
		pattern, limit)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *PGRepository) CountByDepartment(ctx context.Context, department string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`select count(*) from users where department = $1`, department).Scan(&count)
	return count, err
}

func (r *PGRepository) EmailsByDepartment(ctx context.Context, department string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`select distinct email from users where department = $1 order by email`, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Department,
		&u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func collectUsers(rows *sql.Rows) ([]*User, error) {
	defer rows.Close()
	var res []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
