// internal/handlers/webhook/stripe_handler.go
package webhook

import (
	"context"
	"io"
	"net/http"

	"contenthub-service/internal/pkg/response"
	"contenthub-service/internal/service/webhook"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Larger bodies are answered with 413.
const maxPayloadBytes = 64 << 10

type Reconciler interface {
	Handle(ctx context.Context, payload []byte, signature string) (webhook.Outcome, error)
}

type StripeHandler struct {
	reconciler Reconciler
	logger     *zap.Logger
}

func NewStripeHandler(reconciler Reconciler, logger *zap.Logger) *StripeHandler {
	return &StripeHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

type ackResponse struct {
	Detail  string          `json:"detail"`
	Outcome webhook.Outcome `json:"outcome"`
}

// Handle verifies and applies one event. Stripe redelivers on any non-2xx
// answer.
func (h *StripeHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes+1))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payload.")
		return
	}
	if len(payload) > maxPayloadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "Payload too large.")
		return
	}

	outcome, err := h.reconciler.Handle(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, ackResponse{Detail: "Webhook received.", Outcome: outcome})
}
