// internal/domain/subscription/dto.go
package subscription

type CreatePlanRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Price    *Price   `json:"price" validate:"required"`
	Interval Interval `json:"interval" validate:"required,oneof=day week month year"`
}

type SubscribeRequest struct {
	PlanID int64 `json:"plan_id" validate:"omitempty,gt=0"`
}

type CheckoutRequest struct {
	PlanID     int64  `json:"plan_id" validate:"omitempty,gt=0"`
	SuccessURL string `json:"success_url" validate:"omitempty,url"`
	CancelURL  string `json:"cancel_url" validate:"omitempty,url"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}
