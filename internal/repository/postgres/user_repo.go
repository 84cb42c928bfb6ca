// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"contenthub-service/internal/domain/user"
	xerrors "contenthub-service/internal/pkg/errors"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, first_name, last_name, is_active, password_hash, created_at, updated_at`

func scanUser(row scanner) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.IsActive, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user. Duplicate username or email returns ErrConflict.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (username, email, first_name, last_name, is_active, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		u.Username, u.Email, u.FirstName, u.LastName, u.IsActive, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			if constraintOf(err) == "users_email_key" {
				return xerrors.Conflict("Email already exists")
			}
			return xerrors.Conflict("Username already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.findErr(err)
	}
	return u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		return nil, r.findErr(err)
	}
	return u, nil
}

// FindByEmail matches case-insensitively and prefers the oldest account.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) ORDER BY id LIMIT 1`

	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, r.findErr(err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) findErr(err error) error {
	err = notFoundOr(err)
	if errors.Is(err, xerrors.ErrNotFound) {
		return err
	}
	return fmt.Errorf("failed to find user: %w", err)
}
