// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	xerrors "contenthub-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// Manager keeps token sessions in Redis and enforces the per-user device limit.
type Manager struct {
	client     *redis.Client
	maxDevices int
}

// NewManager returns a Manager. maxDevices <= 0 disables the device limit.
func NewManager(client *redis.Client, maxDevices int) *Manager {
	return &Manager{
		client:     client,
		maxDevices: maxDevices,
	}
}

// CreateSession stores a new session unless the user already holds
// maxDevices live sessions.
func (m *Manager) CreateSession(ctx context.Context, session *SessionData) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if m.maxDevices > 0 {
		active, err := m.CountActiveSessions(ctx, session.UserID)
		if err != nil {
			return err
		}
		if active >= m.maxDevices {
			return xerrors.ErrDeviceLimitExceeded
		}
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := m.client.Set(ctx, m.sessionKey(session.UserID, session.JTI), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

// GetSession returns the live session or ErrSessionExpired.
func (m *Manager) GetSession(ctx context.Context, userID int64, jti string) (*SessionData, error) {
	data, err := m.client.Get(ctx, m.sessionKey(userID, jti)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// TouchSession refreshes LastActivityAt while keeping the remaining TTL.
func (m *Manager) TouchSession(ctx context.Context, userID int64, jti string) error {
	session, err := m.GetSession(ctx, userID, jti)
	if err != nil {
		return err
	}

	session.LastActivityAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, m.sessionKey(userID, jti), data, redis.KeepTTL).Err()
}

// InvalidateSession removes one session.
func (m *Manager) InvalidateSession(ctx context.Context, userID int64, jti string) error {
	if err := m.client.Del(ctx, m.sessionKey(userID, jti)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// InvalidateAllUserSessions removes every session of the user.
func (m *Manager) InvalidateAllUserSessions(ctx context.Context, userID int64) error {
	keys, err := m.userSessionKeys(ctx, userID)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return m.client.Del(ctx, keys...).Err()
}

// GetUserActiveSessions returns all live sessions for a user.
func (m *Manager) GetUserActiveSessions(ctx context.Context, userID int64) ([]*SessionData, error) {
	keys, err := m.userSessionKeys(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions := make([]*SessionData, 0, len(keys))
	for _, key := range keys {
		data, err := m.client.Get(ctx, key).Bytes()
		if err != nil {
			continue // expired between SCAN and GET
		}
		var s SessionData
		if err := json.Unmarshal(data, &s); err != nil {
			continue
		}
		sessions = append(sessions, &s)
	}
	return sessions, nil
}

// CountActiveSessions returns the number of live sessions for a user.
func (m *Manager) CountActiveSessions(ctx context.Context, userID int64) (int, error) {
	keys, err := m.userSessionKeys(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// IsTokenBlacklisted checks if a token is blacklisted
func (m *Manager) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := m.client.Exists(ctx, m.blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}

// BlacklistToken adds a token to the blacklist
func (m *Manager) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return m.client.Set(ctx, m.blacklistKey(jti), "1", ttl).Err()
}

func (m *Manager) userSessionKeys(ctx context.Context, userID int64) ([]string, error) {
	var keys []string
	iter := m.client.Scan(ctx, 0, fmt.Sprintf("session:%d:*", userID), 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return keys, nil
}

func (m *Manager) sessionKey(userID int64, jti string) string {
	return fmt.Sprintf("session:%d:%s", userID, jti)
}

func (m *Manager) blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}
