// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"contenthub-service/internal/domain/billing"
	"contenthub-service/internal/domain/subscription"
	"contenthub-service/internal/domain/user"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/metrics"
	"contenthub-service/internal/pkg/validation"

	"go.uber.org/zap"
)

var (
	errAlreadySubscribed = xerrors.Conflict("User is already subscribed to this plan.")
	errNoActive          = xerrors.NotFound("No active subscription found.")
)

type LedgerRepository interface {
	Create(ctx context.Context, e *subscription.LedgerEntry) error
	HasActive(ctx context.Context, userID, planID int64) (bool, error)
	FindActiveByUser(ctx context.Context, userID int64) (*subscription.LedgerEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]*subscription.LedgerEntry, error)
	DeactivateByUser(ctx context.Context, userID int64, at time.Time) ([]*subscription.LedgerEntry, error)
}

type PlanFinder interface {
	FindByID(ctx context.Context, id int64) (*subscription.Plan, error)
	FindByName(ctx context.Context, name string) (*subscription.Plan, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

// Notifier is told about every ledger change after it is stored.
type Notifier interface {
	SubscriptionActivated(u *user.User, e *subscription.LedgerEntry, source string)
	SubscriptionCancelled(u *user.User, entries []*subscription.LedgerEntry, source string)
}

type Config struct {
	Currency string
	// Defaults for hosted checkout when the request carries none.
	SuccessURL string
	CancelURL  string
}

type SubscriptionService struct {
	ledger   LedgerRepository
	plans    PlanFinder
	users    UserFinder
	gateway  billing.Gateway
	notifier Notifier
	cfg      Config
	logger   *zap.Logger
}

func NewSubscriptionService(
	ledger LedgerRepository,
	plans PlanFinder,
	users UserFinder,
	gateway billing.Gateway,
	notifier Notifier,
	cfg Config,
	logger *zap.Logger,
) *SubscriptionService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	cfg.Currency = strings.ToLower(cfg.Currency)
	return &SubscriptionService{
		ledger:   ledger,
		plans:    plans,
		users:    users,
		gateway:  gateway,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Subscribe charges the user for the plan through the provider and records
// an active ledger entry. A zero planID selects the default plan.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, planID int64) (*subscription.LedgerEntry, error) {
	u, p, err := s.prepare(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	priceID, customerID, err := s.providerPrice(ctx, u, p)
	if err != nil {
		return nil, err
	}

	sub, err := s.gateway.CreateSubscription(ctx, customerID, priceID)
	if err != nil {
		return nil, err
	}

	entry := &subscription.LedgerEntry{
		UserID:               u.ID,
		PlanID:               p.ID,
		PlanName:             p.Name,
		StripeSubscriptionID: sub.ID,
		IsActive:             true,
		CurrentPeriodEnd:     subscription.PeriodEndFromUnix(sub.CurrentPeriodEnd),
	}
	if err := s.ledger.Create(ctx, entry); err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			return nil, errAlreadySubscribed
		}
		return nil, fmt.Errorf("failed to record subscription: %w", err)
	}

	s.logger.Info("user subscribed",
		zap.Int64("user_id", u.ID),
		zap.Int64("plan_id", p.ID),
		zap.String("stripe_subscription_id", sub.ID),
	)
	s.notifier.SubscriptionActivated(u, entry, metrics.SourceAPI)

	return entry, nil
}

// StartCheckout opens a hosted checkout session for the plan. The ledger
// entry is written by the webhook once the session completes.
func (s *SubscriptionService) StartCheckout(ctx context.Context, userID int64, req *subscription.CheckoutRequest) (*subscription.CheckoutResponse, error) {
	if err := validation.Struct(req).Err(); err != nil {
		return nil, err
	}

	successURL := firstNonEmpty(req.SuccessURL, s.cfg.SuccessURL)
	cancelURL := firstNonEmpty(req.CancelURL, s.cfg.CancelURL)
	if successURL == "" || cancelURL == "" {
		result := validation.New()
		if successURL == "" {
			result.Add("success_url", "This field is required.")
		}
		if cancelURL == "" {
			result.Add("cancel_url", "This field is required.")
		}
		return nil, result.Err()
	}

	u, p, err := s.prepare(ctx, userID, req.PlanID)
	if err != nil {
		return nil, err
	}

	priceID, customerID, err := s.providerPrice(ctx, u, p)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutParams{
		CustomerID:      customerID,
		PriceID:         priceID,
		SuccessURL:      successURL,
		CancelURL:       cancelURL,
		ClientReference: strconv.FormatInt(u.ID, 10),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout session created",
		zap.Int64("user_id", u.ID),
		zap.Int64("plan_id", p.ID),
		zap.String("session_id", session.ID),
	)

	return &subscription.CheckoutResponse{SessionID: session.ID, URL: session.URL}, nil
}

// Unsubscribe cancels every active entry of the user. It reports false when
// there was nothing to cancel.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID int64) (bool, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return false, err
	}

	cancelled, err := s.ledger.DeactivateByUser(ctx, userID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to cancel subscriptions: %w", err)
	}
	if len(cancelled) == 0 {
		return false, nil
	}

	s.logger.Info("user unsubscribed",
		zap.Int64("user_id", userID),
		zap.Int("entries", len(cancelled)),
	)
	s.notifier.SubscriptionCancelled(u, cancelled, metrics.SourceAPI)

	return true, nil
}

// GetActive returns the most recent active entry of the user.
func (s *SubscriptionService) GetActive(ctx context.Context, userID int64) (*subscription.LedgerEntry, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	entry, err := s.ledger.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, errNoActive
		}
		return nil, err
	}
	return entry, nil
}

func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID int64) (bool, error) {
	_, err := s.ledger.FindActiveByUser(ctx, userID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns the user's full history, newest first.
func (s *SubscriptionService) List(ctx context.Context, userID int64) ([]*subscription.LedgerEntry, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.ledger.ListByUser(ctx, userID)
}

// prepare loads user and plan and rejects a duplicate active entry.
func (s *SubscriptionService) prepare(ctx context.Context, userID, planID int64) (*user.User, *subscription.Plan, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var p *subscription.Plan
	if planID == 0 {
		p, err = s.plans.FindByName(ctx, subscription.DefaultPlanName)
	} else {
		p, err = s.plans.FindByID(ctx, planID)
	}
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, nil, xerrors.NotFound("Subscription plan not found.")
		}
		return nil, nil, err
	}

	active, err := s.ledger.HasActive(ctx, u.ID, p.ID)
	if err != nil {
		return nil, nil, err
	}
	if active {
		return nil, nil, errAlreadySubscribed
	}
	return u, p, nil
}

// providerPrice creates customer, product and recurring price, in that order.
func (s *SubscriptionService) providerPrice(ctx context.Context, u *user.User, p *subscription.Plan) (priceID, customerID string, err error) {
	customer, err := s.gateway.CreateCustomer(ctx, u.Email, u.Username)
	if err != nil {
		return "", "", err
	}

	product, err := s.gateway.CreateProduct(ctx, p.Name)
	if err != nil {
		return "", "", err
	}

	price, err := s.gateway.CreatePrice(ctx, product.ID, p.Price.Cents(), s.cfg.Currency, string(p.Interval))
	if err != nil {
		return "", "", err
	}
	return price.ID, customer.ID, nil
}

func (s *SubscriptionService) findUser(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.NotFound("User not found.")
		}
		return nil, err
	}
	return u, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
