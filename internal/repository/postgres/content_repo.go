// internal/repository/postgres/content_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"contenthub-service/internal/domain/content"
	xerrors "contenthub-service/internal/pkg/errors"
)

type ContentRepository struct {
	db DBTX
}

func NewContentRepository(db DBTX) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = `id, name, description, author_id, url, created_at, updated_at`

var errDuplicateURL = xerrors.Conflict("content with this url already exists.")

func scanContent(row scanner) (*content.Content, error) {
	var c content.Content
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.AuthorID, &c.URL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContentRepository) Create(ctx context.Context, c *content.Content) error {
	query := `
		INSERT INTO contents (name, description, author_id, url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, c.Name, c.Description, c.AuthorID, c.URL).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errDuplicateURL
		}
		if isForeignKeyViolation(err) {
			return xerrors.NotFound("Author not found.")
		}
		return fmt.Errorf("failed to create content: %w", err)
	}
	return nil
}

func (r *ContentRepository) FindByID(ctx context.Context, id int64) (*content.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1`

	c, err := scanContent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		err = notFoundOr(err)
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find content: %w", err)
	}
	return c, nil
}

func (r *ContentRepository) List(ctx context.Context) ([]*content.Content, error) {
	return r.list(ctx, `SELECT `+contentColumns+` FROM contents ORDER BY id`)
}

func (r *ContentRepository) ListByAuthor(ctx context.Context, authorID int64) ([]*content.Content, error) {
	return r.list(ctx, `SELECT `+contentColumns+` FROM contents WHERE author_id = $1 ORDER BY id`, authorID)
}

func (r *ContentRepository) list(ctx context.Context, query string, args ...any) ([]*content.Content, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	items := make([]*content.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *ContentRepository) Update(ctx context.Context, c *content.Content) error {
	query := `
		UPDATE contents
		SET name = $2, description = $3, url = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, c.ID, c.Name, c.Description, c.URL).Scan(&c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errDuplicateURL
		}
		err = notFoundOr(err)
		if errors.Is(err, xerrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update content: %w", err)
	}
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
