package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	"github.com/fooddash/console-api/internal/ports"
	"github.com/fooddash/console-api/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	PasswordLogin(ctx context.Context, input service.PasswordLoginInput) (*service.LoginOutcome, error)
	Register(ctx context.Context, input service.RegisterInput) (ports.RegisterResult, error)
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.LoginOutcome, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// BootstrapServiceInterface defines the bootstrap sequencer operation.
type BootstrapServiceInterface interface {
	Bootstrap(ctx context.Context, sessionID string) (service.BootstrapResult, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Bootstrap    BootstrapServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type userPayload struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	Role         domainauth.Role `json:"role"`
	Plan         domainauth.Plan `json:"plan,omitempty"`
	RestaurantID *int64          `json:"restaurant_id,omitempty"`
	Capabilities map[string]bool `json:"capabilities"`
}

// Login handles the password login endpoint.
// POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	outcome, err := h.Svc.PasswordLogin(r.Context(), service.PasswordLoginInput{
		Email:    req.Email,
		Password: req.Password,
		Remember: req.Remember,
		Device:   deviceInfoFromRequest(r),
	})
	if err != nil {
		RenderError(w, err)
		return
	}

	session := outcome.Session
	h.setSessionCookie(w, r, session)
	// The remembered email outlives the session on purpose: it prefills
	// the login form after logout or expiry. The password never touches
	// any store.
	if req.Remember {
		h.setRememberedEmail(w, r, session.RememberedEmail)
	} else {
		h.clearCookie(w, r, rememberedCookieName)
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user":       userPayloadFor(&session),
		"expires_at": session.ExpiresAt,
	})
}

type registerRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     domainauth.Role `json:"role"`
}

// Register handles account creation.
// POST /auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		RenderError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"id":    result.ID,
		"email": result.Email,
		"role":  result.Role,
	})
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie(sessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	// Clear the session cookie only. The remembered email survives
	// logout so the login form can prefill.
	h.clearCookie(w, r, sessionCookieName)

	if IsBrowserRequest(r) {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Status returns the current authentication status plus the capability
// map the dashboard renders from.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	remembered := ""
	if c, err := r.Cookie(rememberedCookieName); err == nil {
		remembered = c.Value
	}

	sessionCookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		h.writeAnonymousStatus(w, remembered)
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		// Session is invalid or expired, clear the cookie.
		h.clearCookie(w, r, sessionCookieName)
		h.writeAnonymousStatus(w, remembered)
		return
	}

	access := domainauth.ComputeAccess(session.Identity, session.Subscription)
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated":    true,
		"user":             userPayloadFor(session),
		"capabilities":     capabilityNames(access),
		"hints":            session.Hints,
		"remembered_email": remembered,
		"expires_at":       session.ExpiresAt,
	})
}

// writeAnonymousStatus mirrors the authenticated shape: capabilities at
// the top level, user null.
func (h *AuthHandlers) writeAnonymousStatus(w http.ResponseWriter, remembered string) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated":    false,
		"user":             nil,
		"capabilities":     capabilityNames(domainauth.CapabilityMap{}),
		"remembered_email": remembered,
	})
}

// InitialState runs the bootstrap sequence for the caller's session.
// GET /api/bootstrap.
func (h *AuthHandlers) InitialState(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if c, err := r.Cookie(sessionCookieName); err == nil {
		sessionID = c.Value
	}

	result, err := h.Bootstrap.Bootstrap(r.Context(), sessionID)
	if err != nil {
		RenderError(w, err)
		return
	}

	if result.RedirectToLogin {
		// The sequencer already cleared the server-side session.
		h.clearCookie(w, r, sessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated":     false,
			"redirect_to_login": true,
		})
		return
	}

	state := result.State
	access := domainauth.ComputeAccess(state.CurrentUser, state.Subscription)
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": state.CurrentUser != nil,
		"current_user":  state.CurrentUser,
		"subscription":  state.Subscription,
		"capabilities":  capabilityNames(access),
	})
}

// SSOBegin initiates the SSO login flow.
// GET /auth/sso?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) SSOBegin(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		RenderError(w, err)
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// SSOCallback completes the SSO login flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) SSOCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	outcome, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:   code,
		State:  state,
		Nonce:  nonceCookie.Value,
		Device: deviceInfoFromRequest(r),
	})
	if err != nil {
		RenderError(w, err)
		return
	}

	h.setSessionCookie(w, r, outcome.Session)
	h.clearCookie(w, r, oauthStateCookie)
	h.clearCookie(w, r, oauthNonceCookie)

	redirectURI := h.getPostLoginRedirect(w, r)
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// userPayloadFor shapes the session identity for JSON responses,
// including the derived capability map.
func userPayloadFor(session *domainauth.Session) *userPayload {
	if session == nil || session.Identity == nil {
		return nil
	}
	identity := session.Identity
	access := domainauth.ComputeAccess(identity, session.Subscription)
	return &userPayload{
		ID:           identity.ID,
		Email:        identity.Email,
		Role:         identity.Role,
		Plan:         identity.Plan,
		RestaurantID: identity.RestaurantID,
		Capabilities: capabilityNames(access),
	}
}

// capabilityNames flattens a capability map into the JSON shape the
// dashboard consumes.
func capabilityNames(access domainauth.CapabilityMap) map[string]bool {
	return map[string]bool{
		string(domainauth.CapIsAuthenticated): access.Has(domainauth.CapIsAuthenticated),
		string(domainauth.CapIsOwner):         access.Has(domainauth.CapIsOwner),
		string(domainauth.CapIsManager):       access.Has(domainauth.CapIsManager),
		string(domainauth.CapIsKitchen):       access.Has(domainauth.CapIsKitchen),
		string(domainauth.CapIsRider):         access.Has(domainauth.CapIsRider),
		string(domainauth.CapHasPro):          access.Has(domainauth.CapHasPro),
		string(domainauth.CapHasEnterprise):   access.Has(domainauth.CapHasEnterprise),
	}
}

// deviceInfoFromRequest extracts the client's user agent and address
// for device bookkeeping.
func deviceInfoFromRequest(r *http.Request) service.DeviceInfo {
	ip := r.Header.Get("X-Forwarded-For")
	if idx := strings.IndexByte(ip, ','); idx >= 0 {
		ip = ip[:idx]
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	return service.DeviceInfo{
		UserAgent: r.UserAgent(),
		IPAddress: ip,
	}
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// oauthCookieParams groups values needed to set OAuth cookies (≤3 params rule).
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in secure cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	cd := h.CookieDomain

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    p.State,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.SetCookie(w, &http.Cookie{
		Name:     oauthNonceCookie,
		Value:    p.Nonce,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.SetCookie(w, &http.Cookie{
		Name:     postLoginCookie,
		Value:    p.RedirectURI,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// setRememberedEmail writes the long-lived login prefill cookie.
func (h *AuthHandlers) setRememberedEmail(w http.ResponseWriter, r *http.Request, email string) {
	if email == "" {
		return
	}
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     rememberedCookieName,
		Value:    email,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   rememberedEmailMaxAge,
	})
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if redirectCookie, err := r.Cookie(postLoginCookie); err == nil {
		candidate := redirectCookie.Value
		// Defensive re-validation: allow only relative paths
		u, parseErr := url.Parse(candidate)
		if parseErr == nil && !u.IsAbs() && u.Host == "" && strings.HasPrefix(u.Path, "/") {
			redirectURI = candidate
		}
		h.clearCookie(w, r, postLoginCookie)
	}
	return redirectURI
}
