// internal/service/webhook/reconciler.go
package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contenthub-service/internal/domain/billing"
	"contenthub-service/internal/domain/subscription"
	"contenthub-service/internal/domain/user"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Outcome says what happened to an accepted event.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeIgnored   Outcome = "ignored"

	// metric-only outcomes
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

var (
	errBadSignature    = xerrors.WithDetail(billing.ErrInvalidSignature, "Invalid signature.")
	errBadPayload      = xerrors.WithDetail(billing.ErrInvalidPayload, "Invalid payload.")
	errUnknownCustomer = xerrors.WithDetail(xerrors.ErrBadRequest, "User not found.")
	errUnknownPlan     = xerrors.WithDetail(xerrors.ErrBadRequest, "Subscription plan not found.")
)

type LedgerRepository interface {
	Create(ctx context.Context, e *subscription.LedgerEntry) error
	ExistsByProviderID(ctx context.Context, subscriptionID string) (bool, error)
	DeactivateByProviderID(ctx context.Context, subscriptionID string, at time.Time) (*subscription.LedgerEntry, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type PlanFinder interface {
	FindByName(ctx context.Context, name string) (*subscription.Plan, error)
}

type Notifier interface {
	SubscriptionActivated(u *user.User, e *subscription.LedgerEntry, source string)
	SubscriptionCancelled(u *user.User, entries []*subscription.LedgerEntry, source string)
}

// Reconciler turns verified provider events into ledger changes. Every
// handler is idempotent so redeliveries are harmless.
type Reconciler struct {
	gateway  billing.Gateway
	ledger   LedgerRepository
	users    UserFinder
	plans    PlanFinder
	notifier Notifier
	logger   *zap.Logger
}

func NewReconciler(
	gateway billing.Gateway,
	ledger LedgerRepository,
	users UserFinder,
	plans PlanFinder,
	notifier Notifier,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		gateway:  gateway,
		ledger:   ledger,
		users:    users,
		plans:    plans,
		notifier: notifier,
		logger:   logger,
	}
}

// Handle verifies and applies one webhook delivery. Errors matching
// xerrors.ErrBadRequest mean the event must not be retried; anything else
// is transient.
func (r *Reconciler) Handle(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	event, err := r.gateway.ConstructEvent(payload, signature)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", outcomeRejected).Inc()
		r.logger.Warn("rejected webhook", zap.Error(err))
		if errors.Is(err, billing.ErrInvalidPayload) {
			return "", errBadPayload
		}
		return "", errBadSignature
	}

	var outcome Outcome
	switch event.Type {
	case billing.EventCheckoutSessionCompleted:
		outcome, err = r.checkoutCompleted(ctx, event)
	case billing.EventCustomerSubscriptionDeleted:
		outcome, err = r.subscriptionDeleted(ctx, event)
	case billing.EventInvoicePaymentFailed:
		// Stripe retries the charge and sends customer.subscription.deleted
		// if it finally gives up.
		outcome = OutcomeIgnored
	default:
		outcome = OutcomeIgnored
	}

	if err != nil {
		label := outcomeFailed
		if errors.Is(err, xerrors.ErrBadRequest) {
			label = outcomeRejected
		}
		metrics.WebhookEventsTotal.WithLabelValues(event.Type, label).Inc()
		r.logger.Warn("webhook event not applied",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
		return "", err
	}

	metrics.WebhookEventsTotal.WithLabelValues(event.Type, string(outcome)).Inc()
	r.logger.Info("webhook event handled",
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.String("outcome", string(outcome)),
	)
	return outcome, nil
}

func (r *Reconciler) checkoutCompleted(ctx context.Context, event *billing.Event) (Outcome, error) {
	if event.SubscriptionID == "" {
		return "", errBadPayload
	}

	exists, err := r.ledger.ExistsByProviderID(ctx, event.SubscriptionID)
	if err != nil {
		return "", err
	}
	if exists {
		return OutcomeSkipped, nil
	}

	sub, err := r.gateway.GetSubscription(ctx, event.SubscriptionID)
	if err != nil {
		return "", err
	}

	customerID := event.CustomerID
	if customerID == "" {
		customerID = sub.CustomerID
	}
	if customerID == "" {
		return "", errBadPayload
	}

	customer, err := r.gateway.GetCustomer(ctx, customerID)
	if err != nil {
		return "", err
	}
	u, err := r.users.FindByEmail(ctx, customer.Email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return "", errUnknownCustomer
		}
		return "", err
	}

	if sub.ProductID == "" {
		return "", errUnknownPlan
	}
	product, err := r.gateway.GetProduct(ctx, sub.ProductID)
	if err != nil {
		return "", err
	}
	p, err := r.plans.FindByName(ctx, product.Name)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return "", errUnknownPlan
		}
		return "", err
	}

	entry := &subscription.LedgerEntry{
		UserID:               u.ID,
		PlanID:               p.ID,
		PlanName:             p.Name,
		StripeSubscriptionID: sub.ID,
		IsActive:             true,
		CurrentPeriodEnd:     subscription.PeriodEndFromUnix(sub.CurrentPeriodEnd),
	}
	if err := r.ledger.Create(ctx, entry); err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			return OutcomeSkipped, nil
		}
		return "", fmt.Errorf("failed to record subscription: %w", err)
	}

	r.notifier.SubscriptionActivated(u, entry, metrics.SourceWebhook)
	return OutcomeProcessed, nil
}

func (r *Reconciler) subscriptionDeleted(ctx context.Context, event *billing.Event) (Outcome, error) {
	if event.SubscriptionID == "" {
		return "", errBadPayload
	}

	entry, err := r.ledger.DeactivateByProviderID(ctx, event.SubscriptionID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return OutcomeSkipped, nil
		}
		return "", err
	}

	u, err := r.users.FindByID(ctx, entry.UserID)
	if err != nil {
		r.logger.Warn("cancelled entry without user", zap.Int64("user_id", entry.UserID), zap.Error(err))
		u = nil
	}
	r.notifier.SubscriptionCancelled(u, []*subscription.LedgerEntry{entry}, metrics.SourceWebhook)
	return OutcomeProcessed, nil
}
