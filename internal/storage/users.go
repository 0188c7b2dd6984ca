package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/restoflow/restoflow/internal/domain"
)

// CreateUser inserts a new account. A duplicate email maps to
// ErrAlreadyExists.
func (q *Queries) CreateUser(ctx context.Context, user *domain.User) error {
	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return fmt.Errorf("sqlite: marshal roles: %w", err)
	}

	const stmt = `
		INSERT INTO users (email, name, password_hash, roles, vote, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := q.q.ExecContext(ctx, stmt,
		user.Email,
		user.Name,
		user.PasswordHash,
		string(roles),
		user.Vote,
		formatTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: user %q: %w", user.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("sqlite: create user %q: %w", user.Email, err)
	}

	user.ID, err = res.LastInsertId()
	return err
}

// GetUserByEmail loads one account by its unique email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const stmt = `
		SELECT id, email, name, password_hash, roles, vote, created_at
		FROM   users
		WHERE  email = ?`

	return scanUser(q.q.QueryRowContext(ctx, stmt, email))
}

// GetUser loads one account by id.
func (q *Queries) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	const stmt = `
		SELECT id, email, name, password_hash, roles, vote, created_at
		FROM   users
		WHERE  id = ?`

	return scanUser(q.q.QueryRowContext(ctx, stmt, id))
}

// ListUsers returns every account, oldest first.
func (q *Queries) ListUsers(ctx context.Context) ([]*domain.User, error) {
	const stmt = `
		SELECT id, email, name, password_hash, roles, vote, created_at
		FROM   users
		ORDER  BY id`

	rows, err := q.q.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListUsersByRole returns every account holding the given role. Roles are
// stored as a JSON array, so the membership test matches the quoted role
// string inside the column.
func (q *Queries) ListUsersByRole(ctx context.Context, role string) ([]*domain.User, error) {
	const stmt = `
		SELECT id, email, name, password_hash, roles, vote, created_at
		FROM   users
		WHERE  roles LIKE '%"' || ? || '"%'
		ORDER  BY id`

	rows, err := q.q.QueryContext(ctx, stmt, role)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list users by role %q: %w", role, err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// UpdateUser persists email, name, roles, vote and password changes.
func (q *Queries) UpdateUser(ctx context.Context, user *domain.User) error {
	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return fmt.Errorf("sqlite: marshal roles: %w", err)
	}

	const stmt = `
		UPDATE users
		SET    email = ?, name = ?, password_hash = ?, roles = ?, vote = ?
		WHERE  id = ?`

	res, err := q.q.ExecContext(ctx, stmt,
		user.Email, user.Name, user.PasswordHash, string(roles), user.Vote, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: user %q: %w", user.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("sqlite: update user %d: %w", user.ID, err)
	}
	return requireRowAffected(res)
}

// DeleteUser removes an account and, via the FK cascade, its
// notifications. An account still referenced by orders or payments is
// not deletable; the FK violation maps to ErrInUse.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("sqlite: user %d: %w", id, ErrInUse)
		}
		return fmt.Errorf("sqlite: delete user %d: %w", id, err)
	}
	return requireRowAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		roles     string
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &roles, &u.Vote, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan user: %w", err)
	}
	if err := json.Unmarshal([]byte(roles), &u.Roles); err != nil {
		return nil, fmt.Errorf("sqlite: decode roles: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func collectUsers(rows *sql.Rows) ([]*domain.User, error) {
	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// isUniqueViolation sniffs the driver error text; modernc.org/sqlite does
// not export typed constraint errors.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
