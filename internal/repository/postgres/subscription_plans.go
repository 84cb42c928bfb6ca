// internal/repository/postgres/subscription_plans.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"contenthub-service/internal/domain/subscription"
	xerrors "contenthub-service/internal/pkg/errors"
)

type SubscriptionPlanRepository struct {
	db DBTX
}

func NewSubscriptionPlanRepository(db DBTX) *SubscriptionPlanRepository {
	return &SubscriptionPlanRepository{db: db}
}

// price is read as text so the decimal keeps its exact value.
const planColumns = `id, name, price::text, interval, created_at, updated_at`

func scanPlan(row scanner) (*subscription.Plan, error) {
	var (
		p               subscription.Plan
		price, interval string
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &interval, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Interval = subscription.Interval(interval)

	parsed, err := subscription.NewPrice(price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", price, err)
	}
	p.Price = parsed
	return &p, nil
}

// Create creates a new subscription plan
func (r *SubscriptionPlanRepository) Create(ctx context.Context, plan *subscription.Plan) error {
	query := `
		INSERT INTO subscription_plans (name, price, interval)
		VALUES ($1, $2::numeric, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, plan.Name, plan.Price.StringFixed(2), string(plan.Interval)).
		Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.Conflict("subscription plan with this name already exists.")
		}
		return fmt.Errorf("failed to create subscription plan: %w", err)
	}
	return nil
}

// FindByID retrieves a subscription plan by ID
func (r *SubscriptionPlanRepository) FindByID(ctx context.Context, id int64) (*subscription.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`

	p, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.findErr(err)
	}
	return p, nil
}

// FindByName retrieves a plan by its unique name.
func (r *SubscriptionPlanRepository) FindByName(ctx context.Context, name string) (*subscription.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE name = $1`

	p, err := scanPlan(r.db.QueryRow(ctx, query, name))
	if err != nil {
		return nil, r.findErr(err)
	}
	return p, nil
}

func (r *SubscriptionPlanRepository) List(ctx context.Context) ([]*subscription.Plan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+planColumns+` FROM subscription_plans ORDER BY price, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription plans: %w", err)
	}
	defer rows.Close()

	plans := make([]*subscription.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *SubscriptionPlanRepository) findErr(err error) error {
	err = notFoundOr(err)
	if errors.Is(err, xerrors.ErrNotFound) {
		return err
	}
	return fmt.Errorf("failed to find subscription plan: %w", err)
}
