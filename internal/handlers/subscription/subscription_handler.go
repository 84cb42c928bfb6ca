// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"context"
	"errors"
	"io"
	"net/http"

	"contenthub-service/internal/domain/subscription"
	"contenthub-service/internal/middleware"
	"contenthub-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Service interface {
	Subscribe(ctx context.Context, userID, planID int64) (*subscription.LedgerEntry, error)
	StartCheckout(ctx context.Context, userID int64, req *subscription.CheckoutRequest) (*subscription.CheckoutResponse, error)
	Unsubscribe(ctx context.Context, userID int64) (bool, error)
	GetActive(ctx context.Context, userID int64) (*subscription.LedgerEntry, error)
	List(ctx context.Context, userID int64) ([]*subscription.LedgerEntry, error)
}

// SubscriptionHandler serves /users/:id/subscription/. Every route sits
// behind Auth and RequireSelf("id").
type SubscriptionHandler struct {
	subscriptionService Service
	logger              *zap.Logger
}

func NewSubscriptionHandler(subscriptionService Service, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

func (h *SubscriptionHandler) GetActive(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	entry, err := h.subscriptionService.GetActive(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, entry)
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	entries, err := h.subscriptionService.List(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	if entries == nil {
		entries = []*subscription.LedgerEntry{}
	}
	response.JSON(c, http.StatusOK, entries)
}

// Subscribe accepts an optional {"plan_id": n}; an empty body selects the
// default plan.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req subscription.SubscribeRequest
	if !bindOptional(c, &req) {
		return
	}

	entry, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, req.PlanID)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusCreated, entry)
}

func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req subscription.CheckoutRequest
	if !bindOptional(c, &req) {
		return
	}

	session, err := h.subscriptionService.StartCheckout(c.Request.Context(), userID, &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusCreated, session)
}

func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	cancelled, err := h.subscriptionService.Unsubscribe(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	if !cancelled {
		response.NotFound(c, "No active subscription found.")
		return
	}

	response.NoContent(c)
}

func bindOptional(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "Malformed request body.")
		return false
	}
	return true
}
