package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, "Asia/Damascus", cfg.App.Timezone)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshExpiry)
	assert.True(t, cfg.Features.UseMockServices)
	assert.True(t, cfg.Features.AllowEmailAuth)
	assert.False(t, cfg.Features.PhoneVerificationEnabled)
	assert.Equal(t, "123456", cfg.Features.MockOTPCode)
	assert.Equal(t, 6, cfg.OTP.Length)
	assert.Equal(t, 3, cfg.OTP.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.OTP.Expiry)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.Empty(t, cfg.RateLimit.TrustedProxies)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_ACCESS_EXPIRY", "5m")
	t.Setenv("USE_MOCK_SERVICES", "false")
	t.Setenv("CORS_ORIGINS", " https://domecare.sy ,, https://admin.domecare.sy")
	t.Setenv("RATE_LIMIT_TRUSTED_PROXIES", "10.0.0.0/8, 172.17.0.1")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessExpiry)
	assert.False(t, cfg.Features.UseMockServices)
	assert.Equal(t, []string{"https://domecare.sy", "https://admin.domecare.sy"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "172.17.0.1"}, cfg.RateLimit.TrustedProxies)
}

func TestLoadConfig_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=clinic\nOTP_MAX_ATTEMPTS=5\nJWT_REFRESH_EXPIRY=bogus\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "clinic", cfg.DB.Name)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshExpiry)
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestConfig_LocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{App: AppConfig{Timezone: "Nowhere/Invalid"}}
	assert.Equal(t, time.UTC, cfg.Location())
}
