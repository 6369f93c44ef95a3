package ports

// Package ports defines interfaces (hexagonal ports) for session,
// backend-gateway, and auth-provider behavior. Implementations live in
// internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
)

// SessionStore persists and retrieves user sessions. Save replaces the
// whole record in one write so concurrent bootstraps resolve to
// last-committed-wins rather than a mixed old/new state.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteByToken removes the session holding the given bearer token.
	// The interceptor chain's 401 hook only knows the rejected
	// credential, not the session ID.
	DeleteByToken(ctx context.Context, token string) error
}

// StateCache is the shared response cache seeded by the bootstrap
// sequencer so later reads of the same resources are instant and
// consistent. Keys are the canonical fetch paths.
type StateCache interface {
	Seed(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Purge(ctx context.Context, keys ...string) error
}

// LoginInput carries the credentials for an upstream password login.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the upstream login response.
type LoginResult struct {
	AccessToken string
	User        domainauth.Identity
	ExpiresIn   time.Duration
}

// RegisterInput carries a registration request for the upstream backend.
type RegisterInput struct {
	Email    string
	Password string
	Role     domainauth.Role
}

// RegisterResult acknowledges a created account.
type RegisterResult struct {
	ID    int64
	Email string
	Role  domainauth.Role
}

// BackendGateway is the REST surface of the upstream restaurant
// backend. Credential attachment and 401 reaction are handled by the
// interceptor chain inside the adapter, not by callers.
type BackendGateway interface {
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (RegisterResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (domainauth.Identity, error)
	CurrentSubscription(ctx context.Context, token string) (domainauth.Subscription, error)
}

// BeginInput carries inputs for initiating an SSO auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SSOIdentity is the principal returned by an SSO provider before it
// is mapped onto a backend identity. Token is the provider access
// token; deployments running in an SSO mode present it to the backend
// as the bearer credential.
type SSOIdentity struct {
	Subject   string
	Email     string
	Groups    []string
	Token     string
	ExpiresAt time.Time
}

// AuthProvider initiates and completes an SSO authentication flow.
// Used by the oidc and mock auth modes; the password mode talks to the
// BackendGateway directly.
type AuthProvider interface {
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)
	Exchange(ctx context.Context, in ExchangeInput) (SSOIdentity, error)
}

// RoleMapper maps SSO provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
