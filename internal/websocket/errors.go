// internal/websocket/errors.go
package websocket

import (
	"fmt"

	xerrors "contenthub-service/internal/pkg/errors"
)

var (
	ErrTokenBlacklisted = fmt.Errorf("token has been blacklisted: %w", xerrors.ErrTokenRevoked)
	ErrSessionExpired   = fmt.Errorf("websocket: %w", xerrors.ErrSessionExpired)
	ErrInvalidToken     = fmt.Errorf("invalid token: %w", xerrors.ErrUnauthorized)
)
