package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/jwt"
	"contenthub-service/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticValidator map[string]*jwt.Claims

func (v staticValidator) ValidateToken(_ context.Context, token string) (*jwt.Claims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, xerrors.ErrTokenRevoked
}

func newRouter() *gin.Engine {
	exp := time.Now().Add(time.Hour)
	m := NewAuthMiddleware(staticValidator{
		"good": {UserID: 5, Username: "eve", RegisteredClaims: gojwt.RegisteredClaims{ID: "jti-5", ExpiresAt: gojwt.NewNumericDate(exp)}},
	}, zap.NewNop())

	r := gin.New()
	r.Use(Metrics(), RecoveryMiddleware(zap.NewNop()))
	r.GET("/users/:id/", m.Auth(), m.RequireSelf("id"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  MustGetUserID(c),
			"jti":      MustGetJTI(c),
			"username": GetUsername(c),
			"expiry":   !GetTokenExpiry(c).IsZero(),
		})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newRouter()

	w := do(r, "/users/5/", "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":5,"jti":"jti-5","username":"eve","expiry":true}`, w.Body.String())

	w = do(r, "/users/5/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Authentication credentials were not provided."}`, w.Body.String())

	w = do(r, "/users/5/", "revoked")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/users/6/", "good")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, "/users/5/?token=good", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoveryAndMetrics(t *testing.T) {
	r := newRouter()
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/panic", "500")
	before := testutil.ToFloat64(counter)

	w := do(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error."}`, w.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
