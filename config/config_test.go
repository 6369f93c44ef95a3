package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModePassword, cfg.Auth.Mode)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.True(t, cfg.Auth.RequireSubscription)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.False(t, cfg.LoginAlert.IsEnabled())
}

func TestAppConfigFromEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oidc")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("AUTH_REQUIRE_SUBSCRIPTION", "false")
	t.Setenv("BACKEND_BASE_URL", "https://api.fooddash.example")
	t.Setenv("OIDC_CLIENT_ID", "console-prod")
	t.Setenv("AUTH_OWNER_GROUP", "restaurant-owners")
	t.Setenv("LOGIN_ALERT_ENABLED", "true")
	t.Setenv("LOGIN_ALERT_WEBHOOK_URL", "https://hooks.example/alerts")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeOIDC, cfg.Auth.Mode)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.False(t, cfg.Auth.RequireSubscription)
	assert.Equal(t, "https://api.fooddash.example", cfg.Backend.BaseURL)
	assert.Equal(t, "console-prod", cfg.Auth.OIDC.ClientID)
	assert.Equal(t, "restaurant-owners", cfg.Auth.RoleGroups.Owner)
	assert.True(t, cfg.LoginAlert.IsEnabled())
}

func TestAppConfigRejectsUnknownAuthMode(t *testing.T) {
	t.Setenv("AUTH_MODE", "saml")

	var cfg AppConfig
	assert.Error(t, env.Parse(&cfg))
}

func TestAuthModeUnmarshalText(t *testing.T) {
	var m AuthMode
	require.NoError(t, m.UnmarshalText([]byte("OIDC")))
	assert.Equal(t, AuthModeOIDC, m)

	require.NoError(t, m.UnmarshalText([]byte("password")))
	assert.Equal(t, AuthModePassword, m)

	assert.Error(t, m.UnmarshalText([]byte("basic")))
}

func TestAuthConfigSanitizeClampsTTL(t *testing.T) {
	cfg := AuthConfig{SessionTTL: -time.Minute}
	cfg.Sanitize()
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
}

func TestLoginAlertSanitize(t *testing.T) {
	cfg := LoginAlertConfig{Enabled: true, WebhookURL: "   "}
	cfg.Sanitize()
	assert.False(t, cfg.IsEnabled())

	cfg = LoginAlertConfig{Enabled: true, WebhookURL: " https://hooks.example "}
	cfg.Sanitize()
	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, "https://hooks.example", cfg.WebhookURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestObservabilitySanitize(t *testing.T) {
	cfg := ObservabilityConfig{LogLevel: " DEBUG "}
	cfg.Sanitize()
	assert.Equal(t, "debug", cfg.LogLevel)

	cfg = ObservabilityConfig{LogLevel: "verbose"}
	cfg.Sanitize()
	assert.Equal(t, "info", cfg.LogLevel)

	// StatsD cannot be enabled without an address.
	cfg = ObservabilityConfig{StatsdEnabled: true}
	cfg.Sanitize()
	assert.False(t, cfg.StatsdEnabled)
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)
}
