// internal/service/plan/plan.go
package plan

import (
	"context"
	"errors"
	"strings"

	"contenthub-service/internal/domain/subscription"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NUMERIC(8, 2)
var maxPrice = decimal.NewFromInt(1_000_000)

type Repository interface {
	Create(ctx context.Context, p *subscription.Plan) error
	FindByID(ctx context.Context, id int64) (*subscription.Plan, error)
	FindByName(ctx context.Context, name string) (*subscription.Plan, error)
	List(ctx context.Context) ([]*subscription.Plan, error)
}

type PlanService struct {
	planRepo Repository
	logger   *zap.Logger
}

func NewPlanService(planRepo Repository, logger *zap.Logger) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		logger:   logger,
	}
}

// CreatePlan creates a new subscription plan
func (s *PlanService) CreatePlan(ctx context.Context, req *subscription.CreatePlanRequest) (*subscription.Plan, error) {
	req.Name = strings.TrimSpace(req.Name)

	result := validation.Struct(req)
	if req.Price != nil {
		if req.Price.IsNegative() {
			result.Add("price", "Ensure this value is greater than or equal to 0.")
		}
		if !req.Price.HasValidScale() {
			result.Add("price", "Ensure that there are no more than 2 decimal places.")
		}
		if req.Price.GreaterThanOrEqual(maxPrice) {
			result.Add("price", "Ensure that there are no more than 8 digits in total.")
		}
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	p := &subscription.Plan{
		Name:     req.Name,
		Price:    subscription.Price{Decimal: req.Price.Round(2)},
		Interval: req.Interval,
	}
	if err := s.planRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("subscription plan created",
		zap.Int64("plan_id", p.ID),
		zap.String("name", p.Name),
		zap.String("price", p.Price.StringFixed(2)),
	)
	return p, nil
}

func (s *PlanService) GetPlan(ctx context.Context, id int64) (*subscription.Plan, error) {
	p, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.NotFound("Subscription plan not found.")
		}
		return nil, err
	}
	return p, nil
}

func (s *PlanService) ListPlans(ctx context.Context) ([]*subscription.Plan, error) {
	return s.planRepo.List(ctx)
}

// DefaultPlan returns the seeded Basic Plan.
func (s *PlanService) DefaultPlan(ctx context.Context) (*subscription.Plan, error) {
	p, err := s.planRepo.FindByName(ctx, subscription.DefaultPlanName)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.NotFound("Subscription plan not found.")
		}
		return nil, err
	}
	return p, nil
}
