// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"errors"

	xerrors "contenthub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool (and pgx.Tx) the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// pgError returns the postgres error carried by err, if any.
func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgForeignKeyViolation
}

// constraintOf returns the violated constraint name, or "".
func constraintOf(err error) string {
	if pgErr, ok := pgError(err); ok {
		return pgErr.ConstraintName
	}
	return ""
}

// notFoundOr maps pgx.ErrNoRows to ErrNotFound.
func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	return err
}
