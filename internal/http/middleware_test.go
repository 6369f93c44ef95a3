package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/fooddash/console-api/internal/errors"
)

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/dashboard", "/dashboard"},
		{"/settings?tab=billing", "/settings?tab=billing"},
		{"https://evil.example/phish", "/"},
		{"//evil.example", "/"},
		{"dashboard", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeRedirectPath(tt.in), "input %q", tt.in)
	}
}

func TestIsBrowserRequestHeuristics(t *testing.T) {
	api := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
	api.Header.Set("Accept", "text/html")
	assert.False(t, isBrowserRequest(api), "API paths are never browser requests")

	page := httptest.NewRequest(http.MethodGet, "/settings", nil)
	page.Header.Set("Accept", "text/html,application/xhtml+xml")
	assert.True(t, isBrowserRequest(page))

	jsonReq := httptest.NewRequest(http.MethodGet, "/settings", nil)
	jsonReq.Header.Set("Accept", "application/json")
	assert.False(t, isBrowserRequest(jsonReq))

	bare := httptest.NewRequest(http.MethodGet, "/settings", nil)
	assert.True(t, isBrowserRequest(bare), "no Accept header defaults to browser off the API surface")
}

func TestPublicPath(t *testing.T) {
	for _, p := range []string{"/auth/login", "/auth/register", "/auth/status", "/healthz", "/auth/callback", "/auth/sso"} {
		assert.True(t, PublicPath(p), "path %s", p)
	}
	for _, p := range []string{"/api/devices", "/api/bootstrap", "/auth/logout"} {
		assert.False(t, PublicPath(p), "path %s", p)
	}
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code apperrors.ErrorCode
		want int
	}{
		{apperrors.ErrCodeValidation, http.StatusBadRequest},
		{apperrors.ErrCodeUnauthenticated, http.StatusUnauthorized},
		{apperrors.ErrCodePlanRequired, http.StatusPaymentRequired},
		{apperrors.ErrCodeForbidden, http.StatusForbidden},
		{apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.ErrCodeConflict, http.StatusConflict},
		{apperrors.ErrCodeRateLimited, http.StatusTooManyRequests},
		{apperrors.ErrCodeUpstream, http.StatusBadGateway},
		{apperrors.ErrCodeInternal, http.StatusInternalServerError},
		{apperrors.ErrorCode(""), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForCode(tt.code), "code %s", tt.code)
	}
}

func TestRenderErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderError(rec, apperrors.Internal("pg: connection refused at 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestRenderErrorExposesValidationDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderError(rec, apperrors.ValidationField("email", "email is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email is required")
	assert.Contains(t, rec.Body.String(), `"field":"email"`)
}
