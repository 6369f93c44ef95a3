package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	apperrors "github.com/fooddash/console-api/internal/errors"
	"github.com/fooddash/console-api/internal/observability/metrics"
	"github.com/fooddash/console-api/internal/observability/statsd"
	"github.com/fooddash/console-api/internal/ports"
)

// defaultSessionTTL bounds sessions when the upstream token carries no
// expiry of its own.
const defaultSessionTTL = 12 * time.Hour

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Gateway  ports.BackendGateway
	Sessions ports.SessionStore

	// Provider and Roles are set only for the SSO auth modes; the
	// password mode authenticates against the Gateway directly.
	Provider ports.AuthProvider
	Roles    ports.RoleMapper

	// Devices records login devices when configured. Optional.
	Devices *DeviceService

	// SessionTTL applies when the upstream grants no explicit expiry.
	SessionTTL time.Duration

	// Metrics receives login counters when configured. Optional.
	Metrics statsd.Sink

	Logger *slog.Logger
}

// AuthService orchestrates authentication flows: credential exchange
// with the backend or an SSO provider, session persistence, and
// login-device tracking.
type AuthService struct {
	gateway    ports.BackendGateway
	sessions   ports.SessionStore
	provider   ports.AuthProvider
	roles      ports.RoleMapper
	devices    *DeviceService
	sessionTTL time.Duration
	metrics    statsd.Sink
	logger     *slog.Logger
}

var errSessionExpired = errors.New("session expired")

// IsSessionExpired reports whether err marks an expired session.
func IsSessionExpired(err error) bool {
	return errors.Is(err, errSessionExpired)
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.SessionTTL
	if ttl == 0 {
		ttl = defaultSessionTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		gateway:    opts.Gateway,
		sessions:   opts.Sessions,
		provider:   opts.Provider,
		roles:      opts.Roles,
		devices:    opts.Devices,
		sessionTTL: ttl,
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// DeviceInfo describes the client performing a login.
type DeviceInfo struct {
	UserAgent string
	IPAddress string
}

// PasswordLoginInput groups parameters for a password login.
type PasswordLoginInput struct {
	Email    string
	Password string

	// Remember keeps the email for login-form prefill. The password is
	// never persisted anywhere, remembered or not.
	Remember bool

	Device DeviceInfo
}

// LoginOutcome is the result of a completed login.
type LoginOutcome struct {
	Session domainauth.Session
}

// PasswordLogin exchanges credentials with the backend and persists a
// session carrying the bearer token, identity snapshot, and role/plan
// hints.
func (s *AuthService) PasswordLogin(ctx context.Context, input PasswordLoginInput) (*LoginOutcome, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}
	if input.Password == "" {
		return nil, apperrors.ValidationField("password", "password is required")
	}

	res, err := s.gateway.Login(ctx, ports.LoginInput{Email: email, Password: input.Password})
	if err != nil {
		metrics.EmitLogin(s.metrics, metrics.LoginMetric{Mode: "password", Result: metrics.ResultError, Err: err})
		return nil, err
	}

	ttl := s.sessionTTL
	if res.ExpiresIn > 0 {
		ttl = res.ExpiresIn
	}

	identity := res.User
	session := domainauth.Session{
		ID:        generateSessionID(),
		Token:     res.AccessToken,
		Identity:  &identity,
		Hints:     hintsFor(identity, nil),
		ExpiresAt: time.Now().Add(ttl),
	}
	if input.Remember {
		session.RememberedEmail = email
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	s.recordDevice(ctx, session, input.Device)
	metrics.EmitLogin(s.metrics, metrics.LoginMetric{Mode: "password", Result: metrics.ResultSuccess})

	return &LoginOutcome{Session: session}, nil
}

// RegisterInput groups parameters for account registration.
type RegisterInput struct {
	Email    string
	Password string
	Role     domainauth.Role
}

// Register creates an account upstream. It does not log the account in;
// callers follow up with PasswordLogin.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (ports.RegisterResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return ports.RegisterResult{}, apperrors.ValidationField("email", "email is required")
	}
	if input.Password == "" {
		return ports.RegisterResult{}, apperrors.ValidationField("password", "password is required")
	}
	role := input.Role
	if role == "" {
		role = domainauth.RoleOwner
	}
	if !role.Valid() {
		return ports.RegisterResult{}, apperrors.ValidationField("role", "unknown role")
	}

	return s.gateway.Register(ctx, ports.RegisterInput{Email: email, Password: input.Password, Role: role})
}

// BeginLoginResult contains the result of beginning an SSO login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an SSO flow and returns the provider auth URL
// with state and nonce. Only valid in the SSO auth modes.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, apperrors.Validation("SSO login is not enabled")
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing an SSO login flow.
type CompleteLoginInput struct {
	Code   string
	State  string
	Nonce  string
	Device DeviceInfo
}

// CompleteLogin exchanges the authorization code for an identity, maps
// provider groups onto a role, and persists the session. The provider
// token becomes the bearer credential for backend calls.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*LoginOutcome, error) {
	if s.provider == nil {
		return nil, apperrors.Validation("SSO login is not enabled")
	}
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	sso, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		metrics.EmitLogin(s.metrics, metrics.LoginMetric{Mode: "sso", Result: metrics.ResultError, Err: err})
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	role := domainauth.RoleManager
	if s.roles != nil {
		role = s.roles.Map(sso.Groups)
	}

	// SSO asserts identity; the authoritative snapshot (plan, restaurant
	// binding) still comes from the backend on the next bootstrap.
	identity := domainauth.Identity{
		Email:    sso.Email,
		Role:     role,
		IsActive: true,
	}

	expiresAt := sso.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(s.sessionTTL)
	}

	session := domainauth.Session{
		ID:        generateSessionID(),
		Token:     sso.Token,
		Identity:  &identity,
		Hints:     hintsFor(identity, nil),
		ExpiresAt: expiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	s.recordDevice(ctx, session, input.Device)
	metrics.EmitLogin(s.metrics, metrics.LoginMetric{Mode: "sso", Result: metrics.ResultSuccess})

	return &LoginOutcome{Session: session}, nil
}

// GetSession retrieves a session by ID, cleaning up expired records.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Logout revokes the upstream token and removes the local session. The
// local session is removed even when the upstream call fails; the
// remembered email lives outside the session record and survives.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err == nil && session.Token != "" {
		if upErr := s.gateway.Logout(ctx, session.Token); upErr != nil {
			s.logger.WarnContext(ctx, "upstream logout failed", "error", upErr)
		}
	}

	if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
		return fmt.Errorf("delete session: %w", delErr)
	}
	return nil
}

// InvalidateToken clears every trace of a rejected credential. Wired as
// the interceptor chain's 401 hook; the hook only sees the token the
// upstream rejected.
func (s *AuthService) InvalidateToken(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		s.logger.WarnContext(ctx, "clear session after rejected credential", "error", err)
	}
}

// recordDevice notes the login device. Best-effort: device bookkeeping
// never fails a login.
func (s *AuthService) recordDevice(ctx context.Context, session domainauth.Session, device DeviceInfo) {
	if s.devices == nil || session.Identity == nil || session.Identity.ID == 0 {
		return
	}
	input := RecordLoginInput{
		UserID:    session.Identity.ID,
		Email:     session.Identity.Email,
		SessionID: session.ID,
		UserAgent: device.UserAgent,
		IPAddress: device.IPAddress,
	}
	if _, err := s.devices.RecordLogin(ctx, input); err != nil {
		s.logger.WarnContext(ctx, "record login device", "error", err, "user_id", input.UserID)
	}
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	// UUID is URL-safe and has good entropy.
	return uuid.New().String()
}
