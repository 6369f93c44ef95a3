package backend

import (
	"net/http"
	"sync"
)

// tokenHeader carries the credential chosen for one outgoing request.
// The client sets it via request context so the transport stays a plain
// http.RoundTripper.
type tokenKey struct{}

// PublicPaths is the fixed allow-list of endpoints that never receive
// credentials proactively.
var PublicPaths = map[string]struct{}{
	"/auth/login":    {},
	"/auth/register": {},
}

// IsPublicPath reports whether the path is on the credential allow-list.
func IsPublicPath(path string) bool {
	_, ok := PublicPaths[path]
	return ok
}

// UnauthorizedHook reacts to a 401 from a protected endpoint. It
// receives the credential that was rejected. Implementations clear the
// session and arrange the login redirect; the original error still
// propagates to the caller.
type UnauthorizedHook func(token string)

// AuthTransport is the outgoing half of the interceptor chain: it
// attaches the bearer credential to every request whose path is not on
// the public allow-list, and reacts to 401 responses on protected
// paths through the configured hook.
type AuthTransport struct {
	// Base is the underlying round tripper. Defaults to http.DefaultTransport.
	Base http.RoundTripper

	// OnUnauthorized is invoked at most once per rejected credential.
	OnUnauthorized UnauthorizedHook

	mu      sync.Mutex
	handled map[string]struct{}
}

// maxHandledTokens caps the dedup set for rejected credentials. When
// the cap is reached the set is reset; the hook may then fire a second
// time for a very old token, which is safe because session teardown is
// itself idempotent.
const maxHandledTokens = 1024

// NewAuthTransport wraps base with credential attachment and 401 handling.
func NewAuthTransport(base http.RoundTripper, hook UnauthorizedHook) *AuthTransport {
	return &AuthTransport{
		Base:           base,
		OnUnauthorized: hook,
		handled:        make(map[string]struct{}),
	}
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, _ := req.Context().Value(tokenKey{}).(string)
	public := IsPublicPath(req.URL.Path)

	if token != "" && !public {
		// Clone before mutating headers; the request may be retried.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !public {
		t.handleUnauthorized(token)
	}
	return resp, nil
}

// handleUnauthorized invokes the hook once per credential. Repeated
// 401s for the same token (several in-flight calls failing together)
// must not double-clear the session or loop the redirect.
func (t *AuthTransport) handleUnauthorized(token string) {
	if t.OnUnauthorized == nil || token == "" {
		return
	}

	t.mu.Lock()
	if _, done := t.handled[token]; done {
		t.mu.Unlock()
		return
	}
	if len(t.handled) >= maxHandledTokens {
		t.handled = make(map[string]struct{})
	}
	t.handled[token] = struct{}{}
	t.mu.Unlock()

	t.OnUnauthorized(token)
}
