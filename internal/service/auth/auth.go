// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contenthub-service/internal/domain/user"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/jwt"
	"contenthub-service/internal/pkg/session"
	"contenthub-service/internal/pkg/validation"
	"contenthub-service/internal/service/email"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the user storage the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// SessionNotifier pushes forced logouts to connected clients.
type SessionNotifier interface {
	ForceLogout(userID int64, jti, reason string)
}

type AuthService struct {
	userRepo       UserRepository
	jwtManager     *jwt.Manager
	sessionManager *session.Manager
	rateLimiter    *session.RateLimiter
	emailHelper    *email.Helper
	notifier       SessionNotifier
	logger         *zap.Logger
}

// bcrypt rejects longer passwords.
const maxPasswordBytes = 72

func NewAuthService(
	userRepo UserRepository,
	jwtManager *jwt.Manager,
	sessionManager *session.Manager,
	rateLimiter *session.RateLimiter,
	emailHelper *email.Helper,
	notifier SessionNotifier,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		jwtManager:     jwtManager,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		emailHelper:    emailHelper,
		notifier:       notifier,
		logger:         logger,
	}
}

// ========== Registration ==========

// Register creates a new active user account.
func (s *AuthService) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	result := validation.Struct(req)
	if len(req.Password) > maxPasswordBytes {
		result.Add("password", fmt.Sprintf("Ensure this field has no more than %d bytes.", maxPasswordBytes))
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, xerrors.Conflict("Username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", u.ID),
		zap.String("username", u.Username),
	)

	if s.emailHelper != nil {
		s.emailHelper.SendWelcomeEmail(u.Email, u.Username)
	}
	return u, nil
}

// ========== Login ==========

// LoginMeta carries request details recorded on the session.
type LoginMeta struct {
	IPAddress string
	UserAgent string
}

// Login authenticates a user with username/password
func (s *AuthService) Login(ctx context.Context, req *user.LoginRequest, meta LoginMeta) (*user.LoginResponse, error) {
	if err := validation.Struct(req).Err(); err != nil {
		return nil, err
	}

	allowed, _, err := s.rateLimiter.CheckLoginAttempt(ctx, meta.IPAddress, req.Username)
	if err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	if !allowed {
		return nil, xerrors.WithDetail(xerrors.ErrRateLimited, "Too many login attempts, please try again in 15 minutes.")
	}

	u, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, xerrors.ErrInactiveAccount
	}

	resp, err := s.issueSession(ctx, u, req.Device, meta)
	if err != nil {
		return nil, err
	}

	if err := s.rateLimiter.ResetLoginAttempts(ctx, meta.IPAddress, req.Username); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", u.ID),
		zap.String("ip", meta.IPAddress),
	)
	return resp, nil
}

// issueSession signs a token and stores its session, honouring the device limit.
func (s *AuthService) issueSession(ctx context.Context, u *user.User, device string, meta LoginMeta) (*user.LoginResponse, error) {
	token, err := s.jwtManager.Generator.GenerateAccessToken(u.ID, u.Username, device)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	now := time.Now()
	sessionData := &session.SessionData{
		JTI:            token.JTI,
		UserID:         u.ID,
		Username:       u.Username,
		Device:         device,
		IPAddress:      meta.IPAddress,
		UserAgent:      meta.UserAgent,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      token.ExpiresAt,
	}

	if err := s.sessionManager.CreateSession(ctx, sessionData); err != nil {
		if errors.Is(err, xerrors.ErrDeviceLimitExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &user.LoginResponse{
		Detail:    "Login successful",
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt.Unix(),
		User:      u,
	}, nil
}

// ========== Logout ==========

// Logout invalidates the current session
func (s *AuthService) Logout(ctx context.Context, userID int64, jti string, expiresAt time.Time) error {
	if err := s.sessionManager.InvalidateSession(ctx, userID, jti); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}

	if err := s.sessionManager.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	if s.notifier != nil {
		s.notifier.ForceLogout(userID, jti, "User logged out")
	}
	return nil
}

// LogoutAllSessions invalidates all sessions for a user
func (s *AuthService) LogoutAllSessions(ctx context.Context, userID int64) error {
	if err := s.sessionManager.InvalidateAllUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}

	if s.notifier != nil {
		s.notifier.ForceLogout(userID, "", "All sessions logged out")
	}
	return nil
}

// ========== Users ==========

func (s *AuthService) GetUser(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.NotFound("User not found.")
		}
		return nil, err
	}
	return u, nil
}

// ========== Token Validation ==========

// ValidateToken verifies the token and checks it against the session store.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.Verifier.Verify(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrUnauthorized, err)
	}

	blacklisted, err := s.sessionManager.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		return nil, xerrors.ErrTokenRevoked
	}

	if err := s.sessionManager.TouchSession(ctx, claims.UserID, claims.ID); err != nil {
		if errors.Is(err, xerrors.ErrSessionExpired) {
			return nil, fmt.Errorf("%w: %v", xerrors.ErrUnauthorized, err)
		}
		return nil, err
	}

	return claims, nil
}
