// internal/app/router.go
package app

import (
	"net/http"

	authHandler "contenthub-service/internal/handlers/auth"
	authorHandler "contenthub-service/internal/handlers/author"
	contentHandler "contenthub-service/internal/handlers/content"
	subscriptionHandler "contenthub-service/internal/handlers/subscription"
	webhookHandler "contenthub-service/internal/handlers/webhook"
	wsHandler "contenthub-service/internal/handlers/websocket"
	"contenthub-service/internal/middleware"
	"contenthub-service/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler         *authHandler.AuthHandler
	AuthorHandler       *authorHandler.AuthorHandler
	ContentHandler      *contentHandler.ContentHandler
	PlanHandler         *subscriptionHandler.PlanHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	WebhookHandler      *webhookHandler.StripeHandler
	WSHandler           *wsHandler.WebSocketHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// SetupRouter mounts the API at the root and again under /api/v1.
func SetupRouter(r *gin.Engine, h *Handlers) {
	// ==================== Health & Metrics ====================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "1.0.0"})
	})
	r.GET("/metrics", metrics.Handler())

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)
	r.GET("/ws/stats", h.AuthMiddleware.Auth(), h.WSHandler.GetStats)

	registerAPI(r, h)
	registerAPI(r.Group("/api/v1"), h)
}

func registerAPI(api gin.IRouter, h *Handlers) {
	auth := h.AuthMiddleware.Auth()

	// ==================== Users ====================
	users := api.Group("/users")
	{
		users.POST("/", h.AuthHandler.Register)
		users.POST("/login/", h.AuthHandler.Login)
		users.POST("/logout/", auth, h.AuthHandler.Logout)
		users.POST("/logout-all/", auth, h.AuthHandler.LogoutAll)
		users.GET("/:id/", h.AuthHandler.GetUser)
	}

	// ==================== Subscriptions (self only) ====================
	self := api.Group("/users/:id", auth, h.AuthMiddleware.RequireSelf("id"))
	{
		self.GET("/subscription/", h.SubscriptionHandler.GetActive)
		self.POST("/subscription/", h.SubscriptionHandler.Subscribe)
		self.DELETE("/subscription/", h.SubscriptionHandler.Unsubscribe)
		self.POST("/subscription/checkout/", h.SubscriptionHandler.Checkout)
		self.GET("/subscriptions/", h.SubscriptionHandler.List)
	}

	// ==================== Plans ====================
	plans := api.Group("/plans")
	{
		plans.GET("/", h.PlanHandler.ListPlans)
		plans.GET("/:id/", h.PlanHandler.GetPlan)
		plans.POST("/", auth, h.PlanHandler.CreatePlan)
	}

	// ==================== Authors ====================
	authors := api.Group("/authors")
	{
		authors.GET("/", h.AuthorHandler.ListAuthors)
		authors.GET("/:id/", h.AuthorHandler.GetAuthor)
		authors.GET("/:id/content/", h.ContentHandler.ListByAuthor)
		authors.POST("/", auth, h.AuthorHandler.CreateAuthor)
		authors.PUT("/:id/", auth, h.AuthorHandler.UpdateAuthor)
		authors.DELETE("/:id/", auth, h.AuthorHandler.DeleteAuthor)
	}

	// ==================== Content ====================
	content := api.Group("/content")
	{
		content.GET("/", h.ContentHandler.ListContent)
		content.GET("/:id/", h.ContentHandler.GetContent)
		content.POST("/", auth, h.ContentHandler.CreateContent)
		content.PUT("/:id/", auth, h.ContentHandler.UpdateContent)
		content.DELETE("/:id/", auth, h.ContentHandler.DeleteContent)
	}

	// ==================== Webhooks ====================
	api.POST("/webhook/stripe/", h.WebhookHandler.Handle)
}
