package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	cfg := Load()
	assert.Equal(t, "test-key", cfg.StripeSecretKey)
	assert.Equal(t, "test-webhook-secret", cfg.StripeWebhookSecret)
	assert.Equal(t, "usd", cfg.StripeCurrency)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.False(t, cfg.MailEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STRIPE_CURRENCY", "EUR")
	t.Setenv("MAX_DEVICES", "2")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("APP_ENV", "Development")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "eur", cfg.StripeCurrency)
	assert.Equal(t, 2, cfg.MaxDevices)
	assert.Equal(t, 90*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 10, cfg.DBMaxConns)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG", "true")
	assert.True(t, getEnvBool("FLAG", false))
	t.Setenv("FLAG", "nope")
	assert.False(t, getEnvBool("FLAG", false))
}
