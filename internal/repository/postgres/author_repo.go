// internal/repository/postgres/author_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"contenthub-service/internal/domain/author"
	xerrors "contenthub-service/internal/pkg/errors"
)

type AuthorRepository struct {
	db DBTX
}

func NewAuthorRepository(db DBTX) *AuthorRepository {
	return &AuthorRepository{db: db}
}

const authorSelect = `
	SELECT a.id, a.user_id, u.username, a.bio, a.profile_picture, a.created_at, a.updated_at
	FROM authors a
	JOIN users u ON u.id = a.user_id
`

func scanAuthor(row scanner) (*author.Author, error) {
	var a author.Author
	if err := row.Scan(&a.ID, &a.UserID, &a.Username, &a.Bio, &a.ProfilePicture, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an author profile. One profile per user.
func (r *AuthorRepository) Create(ctx context.Context, a *author.Author) error {
	query := `
		INSERT INTO authors (user_id, bio, profile_picture)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, a.UserID, a.Bio, a.ProfilePicture).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.Conflict("Author profile already exists for this user.")
		}
		if isForeignKeyViolation(err) {
			return xerrors.NotFound("User not found.")
		}
		return fmt.Errorf("failed to create author: %w", err)
	}
	return nil
}

func (r *AuthorRepository) FindByID(ctx context.Context, id int64) (*author.Author, error) {
	a, err := scanAuthor(r.db.QueryRow(ctx, authorSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, r.findErr(err)
	}
	return a, nil
}

func (r *AuthorRepository) List(ctx context.Context) ([]*author.Author, error) {
	rows, err := r.db.Query(ctx, authorSelect+` ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]*author.Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// Update writes bio and profile picture.
func (r *AuthorRepository) Update(ctx context.Context, a *author.Author) error {
	query := `
		UPDATE authors
		SET bio = $2, profile_picture = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRow(ctx, query, a.ID, a.Bio, a.ProfilePicture).Scan(&a.UpdatedAt); err != nil {
		return r.findErr(err)
	}
	return nil
}

func (r *AuthorRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *AuthorRepository) findErr(err error) error {
	err = notFoundOr(err)
	if errors.Is(err, xerrors.ErrNotFound) {
		return err
	}
	return fmt.Errorf("failed to find author: %w", err)
}
