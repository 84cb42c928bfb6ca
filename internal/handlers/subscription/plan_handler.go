// internal/handlers/subscription/plan_handler.go
package subscription

import (
	"context"
	"net/http"

	"contenthub-service/internal/domain/subscription"
	"contenthub-service/internal/middleware"
	"contenthub-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlanService interface {
	CreatePlan(ctx context.Context, req *subscription.CreatePlanRequest) (*subscription.Plan, error)
	GetPlan(ctx context.Context, id int64) (*subscription.Plan, error)
	ListPlans(ctx context.Context) ([]*subscription.Plan, error)
}

type PlanHandler struct {
	planService PlanService
	logger      *zap.Logger
}

func NewPlanHandler(planService PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		logger:      logger,
	}
}

// ========== Public Endpoints ==========

func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.planService.ListPlans(c.Request.Context())
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	if plans == nil {
		plans = []*subscription.Plan{}
	}
	response.JSON(c, http.StatusOK, plans)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := middleware.PathID(c, "id")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, plan)
}

// ========== Authenticated Endpoints ==========

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req subscription.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body.")
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusCreated, plan)
}
