// internal/handlers/auth/auth_handler.go
package auth

import (
	"context"
	"net/http"
	"time"

	"contenthub-service/internal/domain/user"
	"contenthub-service/internal/middleware"
	"contenthub-service/internal/pkg/response"
	authUsecase "contenthub-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the part of the auth service the handler drives.
type Service interface {
	Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error)
	Login(ctx context.Context, req *user.LoginRequest, meta authUsecase.LoginMeta) (*user.LoginResponse, error)
	Logout(ctx context.Context, userID int64, jti string, expiresAt time.Time) error
	LogoutAllSessions(ctx context.Context, userID int64) error
	GetUser(ctx context.Context, id int64) (*user.User, error)
}

type AuthHandler struct {
	authService Service
	logger      *zap.Logger
}

func NewAuthHandler(authService Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterResponse is returned by a successful registration.
type RegisterResponse struct {
	Detail string `json:"detail"`
	ID     int64  `json:"id"`
}

// ========== Registration ==========

// Register handles user registration (public endpoint)
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body.")
		return
	}

	u, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusCreated, RegisterResponse{
		Detail: "User registered successfully",
		ID:     u.ID,
	})
}

// ========== Login ==========

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body.")
		return
	}

	meta := authUsecase.LoginMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}

	loginResp, err := h.authService.Login(c.Request.Context(), &req, meta)
	if err != nil {
		h.logger.Info("login failed",
			zap.String("username", req.Username),
			zap.String("ip", meta.IPAddress),
			zap.Error(err),
		)
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, loginResp)
}

// ========== Logout ==========

// Logout handles user logout (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	jti := middleware.MustGetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), userID, jti, middleware.GetTokenExpiry(c)); err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.Detail(c, http.StatusOK, "Logged out successfully")
}

// LogoutAll handles logging out all sessions (requires auth)
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.authService.LogoutAllSessions(c.Request.Context(), userID); err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.Detail(c, http.StatusOK, "All sessions logged out")
}

// ========== Users ==========

// GetUser returns a user by id (public endpoint)
func (h *AuthHandler) GetUser(c *gin.Context) {
	id, ok := middleware.PathID(c, "id")
	if !ok {
		return
	}

	u, err := h.authService.GetUser(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, u)
}
