// internal/repository/postgres/subscription_ledger_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contenthub-service/internal/domain/subscription"
	xerrors "contenthub-service/internal/pkg/errors"
)

// LedgerRepository stores user_subscriptions. Rows are never deleted.
type LedgerRepository struct {
	db DBTX
}

func NewLedgerRepository(db DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const ledgerColumns = `
	us.id, us.user_id, us.plan_id, sp.name, us.stripe_subscription_id, us.is_active,
	us.current_period_end, us.cancelled_at, us.created_at, us.updated_at
`

const ledgerSelect = `SELECT ` + ledgerColumns + `
	FROM user_subscriptions us
	JOIN subscription_plans sp ON sp.id = us.plan_id
`

func scanEntry(row scanner) (*subscription.LedgerEntry, error) {
	var e subscription.LedgerEntry
	err := row.Scan(
		&e.ID, &e.UserID, &e.PlanID, &e.PlanName, &e.StripeSubscriptionID, &e.IsActive,
		&e.CurrentPeriodEnd, &e.CancelledAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create records an entry for (user, plan). An inactive row for the same pair
// is reactivated in place. An active row for the pair, or a provider
// subscription id that was ever recorded, returns ErrDuplicateEntry.
func (r *LedgerRepository) Create(ctx context.Context, e *subscription.LedgerEntry) error {
	query := `
		WITH entry AS (
			INSERT INTO user_subscriptions (user_id, plan_id, stripe_subscription_id, is_active, current_period_end)
			SELECT $1, $2, $3, $4, $5
			WHERE NOT EXISTS (SELECT 1 FROM subscription_provider_ids WHERE stripe_subscription_id = $3)
			ON CONFLICT (user_id, plan_id) DO UPDATE SET
				stripe_subscription_id = EXCLUDED.stripe_subscription_id,
				is_active = EXCLUDED.is_active,
				current_period_end = EXCLUDED.current_period_end,
				cancelled_at = NULL,
				updated_at = NOW()
			WHERE user_subscriptions.is_active = FALSE
			RETURNING id, stripe_subscription_id, cancelled_at, created_at, updated_at
		), seen AS (
			INSERT INTO subscription_provider_ids (stripe_subscription_id, ledger_id)
			SELECT stripe_subscription_id, id FROM entry
		)
		SELECT id, cancelled_at, created_at, updated_at FROM entry
	`

	err := r.db.QueryRow(ctx, query,
		e.UserID, e.PlanID, e.StripeSubscriptionID, e.IsActive, e.CurrentPeriodEnd,
	).Scan(&e.ID, &e.CancelledAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) || errors.Is(notFoundOr(err), xerrors.ErrNotFound) {
			return xerrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create subscription entry: %w", err)
	}
	return nil
}

// ExistsByProviderID reports whether the provider subscription id was ever
// recorded, including ids replaced by a later reactivation.
func (r *LedgerRepository) ExistsByProviderID(ctx context.Context, subscriptionID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM subscription_provider_ids WHERE stripe_subscription_id = $1)`,
		subscriptionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription id: %w", err)
	}
	return exists, nil
}

// HasActive reports whether the user holds an active entry for the plan.
func (r *LedgerRepository) HasActive(ctx context.Context, userID, planID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_subscriptions WHERE user_id = $1 AND plan_id = $2 AND is_active)`,
		userID, planID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active subscription: %w", err)
	}
	return exists, nil
}

// FindActiveByUser returns the most recently created active entry.
func (r *LedgerRepository) FindActiveByUser(ctx context.Context, userID int64) (*subscription.LedgerEntry, error) {
	query := ledgerSelect + `
		WHERE us.user_id = $1 AND us.is_active
		ORDER BY us.created_at DESC, us.id DESC
		LIMIT 1
	`
	e, err := scanEntry(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, r.findErr(err)
	}
	return e, nil
}

// ListByUser returns the full history of a user, newest first.
func (r *LedgerRepository) ListByUser(ctx context.Context, userID int64) ([]*subscription.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, ledgerSelect+` WHERE us.user_id = $1 ORDER BY us.created_at DESC, us.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	entries := make([]*subscription.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeactivateByUser cancels every active entry of the user and returns them.
func (r *LedgerRepository) DeactivateByUser(ctx context.Context, userID int64, at time.Time) ([]*subscription.LedgerEntry, error) {
	query := `
		WITH us AS (
			UPDATE user_subscriptions
			SET is_active = FALSE, cancelled_at = $2, updated_at = NOW()
			WHERE user_id = $1 AND is_active
			RETURNING *
		)
		SELECT ` + ledgerColumns + `
		FROM us
		JOIN subscription_plans sp ON sp.id = us.plan_id
		ORDER BY us.id
	`

	rows, err := r.db.Query(ctx, query, userID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel subscriptions: %w", err)
	}
	defer rows.Close()

	entries := make([]*subscription.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeactivateByProviderID cancels the active entry holding the provider id.
// ErrNotFound when no active entry matches.
func (r *LedgerRepository) DeactivateByProviderID(ctx context.Context, subscriptionID string, at time.Time) (*subscription.LedgerEntry, error) {
	query := `
		WITH us AS (
			UPDATE user_subscriptions
			SET is_active = FALSE, cancelled_at = $2, updated_at = NOW()
			WHERE stripe_subscription_id = $1 AND is_active
			RETURNING *
		)
		SELECT ` + ledgerColumns + `
		FROM us
		JOIN subscription_plans sp ON sp.id = us.plan_id
	`

	e, err := scanEntry(r.db.QueryRow(ctx, query, subscriptionID, at))
	if err != nil {
		return nil, r.findErr(err)
	}
	return e, nil
}

func (r *LedgerRepository) findErr(err error) error {
	err = notFoundOr(err)
	if errors.Is(err, xerrors.ErrNotFound) {
		return err
	}
	return fmt.Errorf("failed to find subscription: %w", err)
}
