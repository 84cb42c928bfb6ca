// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by an access token. ID (jti) doubles as the session key.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Device   string `json:"device,omitempty"`
	jwt.RegisteredClaims
}
