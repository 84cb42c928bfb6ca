// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"strings"
	"time"

	"contenthub-service/internal/pkg/jwt"
	"contenthub-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by Auth.
const (
	ctxUserID    = "user_id"
	ctxUsername  = "username"
	ctxJTI       = "jti"
	ctxExpiresAt = "token_expires_at"
	ctxDevice    = "device"
)

// TokenValidator checks an access token against signature and session store.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// Auth is the base authentication middleware that validates JWT tokens
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "Authentication credentials were not provided.")
			return
		}

		claims, err := m.validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			m.logger.Debug("token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			response.FromError(c, m.logger, err)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxJTI, claims.ID)
		c.Set(ctxDevice, claims.Device)
		if claims.ExpiresAt != nil {
			c.Set(ctxExpiresAt, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RequireSelf rejects the request unless the :param path segment is the
// authenticated user's id. MUST be used after Auth().
func (m *AuthMiddleware) RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := PathID(c, param)
		if !ok {
			return
		}

		userID, ok := GetUserID(c)
		if !ok || userID != id {
			response.Forbidden(c, "You do not have permission to perform this action.")
			return
		}

		c.Next()
	}
}

// extractToken extracts Bearer token from Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Fallback to query param (use with caution in production)
	return c.Query("token")
}

// GetUserID returns the authenticated user's id.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := v.(int64)
	return id, ok
}

// GetJTI returns the id of the presented access token.
func GetJTI(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxJTI)
	if !exists {
		return "", false
	}

	jti, ok := v.(string)
	return jti, ok
}

// GetTokenExpiry returns when the presented access token expires.
func GetTokenExpiry(c *gin.Context) time.Time {
	v, exists := c.Get(ctxExpiresAt)
	if !exists {
		return time.Time{}
	}
	t, _ := v.(time.Time)
	return t
}

func GetUsername(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
