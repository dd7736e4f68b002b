package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "APP_PORT", "SESSION_TTL", "VERIFY_OTP_TTL", "RESET_OTP_TTL", "BCRYPT_COST", "CORS_ORIGINS", "NOTIFY_DRIVER"} {
		t.Setenv(k, "")
	}
	c := Load()

	assert.Equal(t, "development", c.Env)
	assert.Equal(t, "4000", c.Port)
	assert.Equal(t, 7*24*time.Hour, c.SessionTTL)
	assert.Equal(t, 24*time.Hour, c.VerifyOTPTTL)
	assert.Equal(t, 15*time.Minute, c.ResetOTPTTL)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, []string{"http://localhost:5173"}, c.CORSOrigins)
	assert.Equal(t, "log", c.NotifyDriver)
	assert.False(t, c.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("RESET_OTP_TTL", "15h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DD_ENABLED", "TRUE")
	t.Setenv("SESSION_TTL", "garbage")

	c := Load()

	assert.True(t, c.IsProduction())
	assert.Equal(t, 15*time.Hour, c.ResetOTPTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.True(t, c.DDEnabled)
	assert.Equal(t, 7*24*time.Hour, c.SessionTTL)
}

func TestLoad_MalformedNumbersKeepDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MIN", "20/min")
	t.Setenv("SMTP_PORT", "smtp")
	t.Setenv("BCRYPT_COST", "-4")
	t.Setenv("RABBIT_CONCURRENCY", " 8 ")

	c := Load()

	assert.Equal(t, 20, c.RateLimitPerMin)
	assert.Equal(t, 587, c.SMTPPort)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, 8, c.RabbitConcurrency)
}

func TestLoad_RateLimitCanBeDisabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MIN", "0")
	assert.Equal(t, 0, Load().RateLimitPerMin)
}

func TestLoad_NextSigningKey(t *testing.T) {
	t.Setenv("JWT_KEY_ID", "2026-01")
	t.Setenv("JWT_NEXT_KEY_ID", "2026-07")
	t.Setenv("JWT_NEXT_PRIVATE_KEY_PATH", "/etc/auth/next.pem")

	c := Load()

	assert.Equal(t, "2026-01", c.JWTKeyID)
	assert.Equal(t, "2026-07", c.JWTNextKeyID)
	assert.Equal(t, "/etc/auth/next.pem", c.JWTNextPrivateKeyPath)
}
