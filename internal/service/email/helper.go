// internal/service/email/helper.go
package email

import (
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"
)

// Helper builds the service's transactional emails and sends them in the
// background. Delivery failures are logged, never returned.
type Helper struct {
	sender Sender
	logger *zap.Logger
}

func NewHelper(sender Sender, logger *zap.Logger) *Helper {
	if sender == nil {
		sender = NoopSender{}
	}
	return &Helper{sender: sender, logger: logger}
}

// ========== Welcome ==========

func (h *Helper) WelcomeEmail(username string) (string, string) {
	subject := "Welcome to ContentHub"
	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been created. You can now log in and start following your favourite authors.</p>
	`, html.EscapeString(username))
	return subject, body
}

func (h *Helper) SendWelcomeEmail(to, username string) {
	subject, body := h.WelcomeEmail(username)
	h.sendAsync("welcome", to, subject, body)
}

// ========== Subscription ==========

func (h *Helper) SubscriptionActivatedEmail(username, planName string, periodEnd time.Time) (string, string) {
	subject := fmt.Sprintf("Your %s subscription is active", planName)
	body := fmt.Sprintf(`
		<h2>Subscription confirmed</h2>
		<p>Hello %s,</p>
		<p>Your <strong>%s</strong> subscription is now active. The current period ends on %s.</p>
	`, html.EscapeString(username), html.EscapeString(planName), periodEnd.UTC().Format("January 2, 2006"))
	return subject, body
}

func (h *Helper) SendSubscriptionActivated(to, username, planName string, periodEnd time.Time) {
	subject, body := h.SubscriptionActivatedEmail(username, planName, periodEnd)
	h.sendAsync("subscription_activated", to, subject, body)
}

func (h *Helper) SubscriptionCancelledEmail(username string) (string, string) {
	subject := "Your subscription has been cancelled"
	body := fmt.Sprintf(`
		<h2>Subscription cancelled</h2>
		<p>Hello %s,</p>
		<p>Your subscription has been cancelled. You will not be charged again.</p>
	`, html.EscapeString(username))
	return subject, body
}

func (h *Helper) SendSubscriptionCancelled(to, username string) {
	subject, body := h.SubscriptionCancelledEmail(username)
	h.sendAsync("subscription_cancelled", to, subject, body)
}

func (h *Helper) sendAsync(kind, to, subject, body string) {
	if to == "" {
		return
	}
	go func() {
		if err := h.sender.Send(to, subject, body); err != nil {
			h.logger.Error("failed to send email",
				zap.String("kind", kind),
				zap.String("email", to),
				zap.Error(err),
			)
			return
		}
		h.logger.Info("email sent",
			zap.String("kind", kind),
			zap.String("email", to),
		)
	}()
}
