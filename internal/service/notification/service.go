// internal/service/notification/service.go
package notification

import (
	"contenthub-service/internal/domain/subscription"
	"contenthub-service/internal/domain/user"
	wstypes "contenthub-service/internal/domain/websocket"
	"contenthub-service/internal/pkg/metrics"
	"contenthub-service/internal/service/email"

	"go.uber.org/zap"
)

// Pusher delivers a realtime message to every connection of a user.
type Pusher interface {
	SendToUser(userID int64, msg *wstypes.WSMessage)
}

// NotificationService fans ledger changes out to the websocket hub, email
// and metrics. Nothing here can fail the caller.
type NotificationService struct {
	hub    Pusher
	mail   *email.Helper
	logger *zap.Logger
}

func NewNotificationService(hub Pusher, mail *email.Helper, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mail == nil {
		mail = email.NewHelper(nil, logger)
	}
	return &NotificationService{
		hub:    hub,
		mail:   mail,
		logger: logger,
	}
}

// SubscriptionActivated reports a new or reactivated ledger entry.
func (s *NotificationService) SubscriptionActivated(u *user.User, e *subscription.LedgerEntry, source string) {
	metrics.LedgerChangesTotal.WithLabelValues(metrics.ChangeActivated, source).Inc()

	s.logger.Info("subscription activated",
		zap.Int64("user_id", e.UserID),
		zap.Int64("plan_id", e.PlanID),
		zap.String("stripe_subscription_id", e.StripeSubscriptionID),
		zap.String("source", source),
	)

	s.push(e.UserID, wstypes.EventTypeSubscriptionActivated, e)

	if u != nil {
		s.mail.SendSubscriptionActivated(u.Email, u.Username, e.PlanName, e.CurrentPeriodEnd)
	}
}

// SubscriptionCancelled reports entries that were just deactivated. An empty
// slice is a no-op.
func (s *NotificationService) SubscriptionCancelled(u *user.User, entries []*subscription.LedgerEntry, source string) {
	if len(entries) == 0 {
		return
	}
	metrics.LedgerChangesTotal.WithLabelValues(metrics.ChangeCancelled, source).Add(float64(len(entries)))

	for _, e := range entries {
		s.logger.Info("subscription cancelled",
			zap.Int64("user_id", e.UserID),
			zap.Int64("plan_id", e.PlanID),
			zap.String("stripe_subscription_id", e.StripeSubscriptionID),
			zap.String("source", source),
		)
		s.push(e.UserID, wstypes.EventTypeSubscriptionCancelled, e)
	}

	if u != nil {
		s.mail.SendSubscriptionCancelled(u.Email, u.Username)
	}
}

func (s *NotificationService) push(userID int64, event wstypes.EventType, e *subscription.LedgerEntry) {
	if s.hub == nil {
		return
	}
	periodEnd := e.CurrentPeriodEnd
	s.hub.SendToUser(userID, wstypes.NewMessage(event, wstypes.SubscriptionEventData{
		EntryID:          e.ID,
		PlanID:           e.PlanID,
		PlanName:         e.PlanName,
		IsActive:         e.IsActive,
		CurrentPeriodEnd: &periodEnd,
		CancelledAt:      e.CancelledAt,
	}))
}
