package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func respWithStatus(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("")),
	}
}

func requestWithToken(path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "http://backend.internal"+path, nil)
	if token == "" {
		return req
	}
	return req.WithContext(context.WithValue(req.Context(), tokenKey{}, token))
}

func TestIsPublicPath(t *testing.T) {
	assert.True(t, IsPublicPath("/auth/login"))
	assert.True(t, IsPublicPath("/auth/register"))
	assert.False(t, IsPublicPath("/auth/me"))
	assert.False(t, IsPublicPath("/subscription/current"))
}

func TestRoundTripAttachesBearerOnProtectedPaths(t *testing.T) {
	var seen string
	transport := NewAuthTransport(rtFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get("Authorization")
		return respWithStatus(http.StatusOK), nil
	}), nil)

	_, err := transport.RoundTrip(requestWithToken("/auth/me", "tok-1"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", seen)
}

func TestRoundTripSkipsPublicPaths(t *testing.T) {
	var seen string
	transport := NewAuthTransport(rtFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get("Authorization")
		return respWithStatus(http.StatusOK), nil
	}), nil)

	// Even with a credential in hand, the allow-list wins.
	_, err := transport.RoundTrip(requestWithToken("/auth/login", "tok-1"))
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestRoundTripDoesNotMutateOriginalRequest(t *testing.T) {
	transport := NewAuthTransport(rtFunc(func(req *http.Request) (*http.Response, error) {
		return respWithStatus(http.StatusOK), nil
	}), nil)

	original := requestWithToken("/auth/me", "tok-1")
	_, err := transport.RoundTrip(original)
	require.NoError(t, err)
	assert.Empty(t, original.Header.Get("Authorization"))
}

func TestUnauthorizedHookFiresOncePerToken(t *testing.T) {
	calls := make(map[string]int)
	transport := NewAuthTransport(rtFunc(func(req *http.Request) (*http.Response, error) {
		return respWithStatus(http.StatusUnauthorized), nil
	}), func(token string) {
		calls[token]++
	})

	// Several in-flight calls failing with the same rejected credential
	// must not double-clear the session.
	for range 3 {
		_, err := transport.RoundTrip(requestWithToken("/auth/me", "tok-1"))
		require.NoError(t, err)
	}
	_, err := transport.RoundTrip(requestWithToken("/auth/me", "tok-2"))
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"tok-1": 1, "tok-2": 1}, calls)
}

func TestUnauthorizedDedupSetStaysBounded(t *testing.T) {
	transport := NewAuthTransport(rtFunc(func(req *http.Request) (*http.Response, error) {
		return respWithStatus(http.StatusUnauthorized), nil
	}), func(string) {})

	// A long-lived gateway sees a steady trickle of rejected tokens; the
	// dedup set must not grow without limit.
	for i := range maxHandledTokens + 10 {
		_, err := transport.RoundTrip(requestWithToken("/auth/me", "tok-"+strconv.Itoa(i)))
		require.NoError(t, err)
	}

	transport.mu.Lock()
	size := len(transport.handled)
	transport.mu.Unlock()
	assert.LessOrEqual(t, size, maxHandledTokens)
}

func TestUnauthorizedHookSkipsAnonymousRequests(t *testing.T) {
	var fired bool
	transport := NewAuthTransport(rtFunc(func(req *http.Request) (*http.Response, error) {
		return respWithStatus(http.StatusUnauthorized), nil
	}), func(string) { fired = true })

	_, err := transport.RoundTrip(requestWithToken("/auth/me", ""))
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestUnauthorizedHookSkipsPublicPaths(t *testing.T) {
	var fired bool
	transport := NewAuthTransport(rtFunc(func(req *http.Request) (*http.Response, error) {
		return respWithStatus(http.StatusUnauthorized), nil
	}), func(string) { fired = true })

	// A 401 from the login endpoint is a credential failure, not a
	// session invalidation.
	_, err := transport.RoundTrip(requestWithToken("/auth/login", "tok-1"))
	require.NoError(t, err)
	assert.False(t, fired)
}
