package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModePassword authenticates against the upstream backend's
	// password endpoints. This is the default for hosted deployments.
	AuthModePassword AuthMode = "password"
	// AuthModeOIDC uses OIDC/OAuth for authentication.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "password", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: password, oidc, mock)", v)
	}
}

// OIDCConfig contains OIDC/OAuth configuration (used when Mode=oidc).
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"fooddash-console"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Subject string   `env:"SUBJECT" envDefault:"dev-user"`
	Email   string   `env:"EMAIL"   envDefault:"dev@example.com"`
	Groups  []string `env:"GROUPS"  envDefault:"owners"           envSeparator:";"`
}

// RoleGroupsConfig maps identity-provider groups onto console roles
// (used by the SSO modes).
type RoleGroupsConfig struct {
	Owner   string `env:"OWNER_GROUP"   envDefault:"owners"`
	Manager string `env:"MANAGER_GROUP" envDefault:"managers"`
	Kitchen string `env:"KITCHEN_GROUP" envDefault:"kitchen"`
	Rider   string `env:"RIDER_GROUP"   envDefault:"riders"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"password"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// RoleGroups maps provider groups to roles (SSO modes).
	RoleGroups RoleGroupsConfig `envPrefix:"AUTH_"`

	// SessionTTL bounds sessions when the upstream grants no explicit
	// token expiry.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// RequireSubscription makes the bootstrap sequence fetch the billing
	// snapshot alongside the identity. Disable for deployments without
	// a billing backend.
	RequireSubscription bool `env:"AUTH_REQUIRE_SUBSCRIPTION" envDefault:"true"`
}

// Sanitize applies guardrails to auth configuration values.
func (c *AuthConfig) Sanitize() {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 12 * time.Hour
	}
}
