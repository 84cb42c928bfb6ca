package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authHandler "contenthub-service/internal/handlers/auth"
	authorHandler "contenthub-service/internal/handlers/author"
	contentHandler "contenthub-service/internal/handlers/content"
	subscriptionHandler "contenthub-service/internal/handlers/subscription"
	webhookHandler "contenthub-service/internal/handlers/webhook"
	wsHandler "contenthub-service/internal/handlers/websocket"
	"contenthub-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	r := gin.New()
	SetupRouter(r, &Handlers{
		AuthHandler:         authHandler.NewAuthHandler(nil, log),
		AuthorHandler:       authorHandler.NewAuthorHandler(nil, log),
		ContentHandler:      contentHandler.NewContentHandler(nil, log),
		PlanHandler:         subscriptionHandler.NewPlanHandler(nil, log),
		SubscriptionHandler: subscriptionHandler.NewSubscriptionHandler(nil, log),
		WebhookHandler:      webhookHandler.NewStripeHandler(nil, log),
		WSHandler:           wsHandler.NewWebSocketHandler(nil, nil, log),
		AuthMiddleware:      middleware.NewAuthMiddleware(nil, log),
	})
	return r
}

func TestSetupRouter_Routes(t *testing.T) {
	r := newEngine()

	registered := map[string]bool{}
	for _, rt := range r.Routes() {
		registered[rt.Method+" "+rt.Path] = true
	}

	for _, prefix := range []string{"", "/api/v1"} {
		for _, route := range []string{
			"POST /users/",
			"POST /users/login/",
			"POST /users/logout/",
			"GET /users/:id/",
			"GET /users/:id/subscription/",
			"POST /users/:id/subscription/",
			"DELETE /users/:id/subscription/",
			"POST /users/:id/subscription/checkout/",
			"GET /users/:id/subscriptions/",
			"GET /plans/",
			"GET /plans/:id/",
			"POST /plans/",
			"GET /authors/",
			"GET /authors/:id/content/",
			"PUT /authors/:id/",
			"DELETE /content/:id/",
			"POST /webhook/stripe/",
		} {
			method, path, _ := strings.Cut(route, " ")
			assert.True(t, registered[method+" "+prefix+path], "missing %s %s%s", method, prefix, path)
		}
	}
	assert.True(t, registered["GET /ws"])
	assert.True(t, registered["GET /metrics"])
}

func TestSetupRouter_HealthAndAuthGuard(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.0.0"}`, w.Body.String())

	// rejected before the (nil) service is reached
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/users/1/subscription/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
