// internal/pkg/session/rate_limiter.go
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginAttempts   = 5
	loginAttemptWindow = 15 * time.Minute
)

type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLoginAttempt counts an attempt and reports whether it is allowed.
// Up to 5 attempts per IP and username every 15 minutes.
func (r *RateLimiter) CheckLoginAttempt(ctx context.Context, ip, username string) (bool, int64, error) {
	key := loginKey(ip, username)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment login attempt: %w", err)
	}
	if count == 1 {
		r.client.Expire(ctx, key, loginAttemptWindow)
	}

	remaining := maxLoginAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= maxLoginAttempts, remaining, nil
}

// GetRemainingAttempts returns remaining login attempts
func (r *RateLimiter) GetRemainingAttempts(ctx context.Context, ip, username string) (int64, error) {
	count, err := r.client.Get(ctx, loginKey(ip, username)).Int64()
	if errors.Is(err, redis.Nil) {
		return maxLoginAttempts, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get login attempts: %w", err)
	}

	remaining := maxLoginAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ResetLoginAttempts resets the login attempt counter
func (r *RateLimiter) ResetLoginAttempts(ctx context.Context, ip, username string) error {
	return r.client.Del(ctx, loginKey(ip, username)).Err()
}

func loginKey(ip, username string) string {
	return fmt.Sprintf("ratelimit:login:%s:%s", ip, strings.ToLower(username))
}
