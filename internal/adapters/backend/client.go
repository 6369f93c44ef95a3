package backend

// Package backend is the REST gateway to the upstream restaurant
// service. It owns the request interceptor chain: credential
// attachment on the way out, 401 reaction on the way in. Callers see
// AppError codes, never raw status codes.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	apperrors "github.com/fooddash/console-api/internal/errors"
	"github.com/fooddash/console-api/internal/ports"
)

// ClientOptions groups dependencies for Client.
type ClientOptions struct {
	// BaseURL is the upstream root, e.g. "https://api.fooddash.example".
	BaseURL string
	// Timeout bounds each call. Defaults to 10s, matching the dashboard.
	Timeout time.Duration
	// OnUnauthorized reacts to 401s from protected endpoints.
	OnUnauthorized UnauthorizedHook
	// Transport overrides the base round tripper (tests).
	Transport http.RoundTripper
}

// Client implements ports.BackendGateway over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.BackendGateway = (*Client)(nil)

// NewClient constructs a backend client with the interceptor chain installed.
func NewClient(opts ClientOptions) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: NewAuthTransport(opts.Transport, opts.OnUnauthorized),
		},
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	ExpiresIn   int64               `json:"expires_in"`
	User        domainauth.Identity `json:"user"`
}

// Login exchanges credentials for a bearer token. POST /auth/login.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (ports.LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, callParams{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   loginRequest{Email: in.Email, Password: in.Password},
	}, &resp)
	if err != nil {
		return ports.LoginResult{}, err
	}
	if resp.AccessToken == "" {
		return ports.LoginResult{}, apperrors.Upstream("login response missing access token")
	}
	return ports.LoginResult{
		AccessToken: resp.AccessToken,
		User:        resp.User,
		ExpiresIn:   time.Duration(resp.ExpiresIn) * time.Second,
	}, nil
}

type registerRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     domainauth.Role `json:"role"`
}

// Register creates an account upstream. POST /auth/register.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (ports.RegisterResult, error) {
	var resp ports.RegisterResult
	err := c.do(ctx, callParams{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   registerRequest{Email: in.Email, Password: in.Password, Role: in.Role},
	}, &resp)
	if err != nil {
		return ports.RegisterResult{}, err
	}
	return resp, nil
}

// Logout invalidates the upstream token. POST /auth/logout. Callers
// clear the local session regardless of this call's outcome.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, callParams{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Token:  token,
	}, nil)
}

// CurrentUser fetches the authoritative identity. GET /auth/me.
func (c *Client) CurrentUser(ctx context.Context, token string) (domainauth.Identity, error) {
	var identity domainauth.Identity
	err := c.do(ctx, callParams{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Token:  token,
	}, &identity)
	if err != nil {
		return domainauth.Identity{}, err
	}
	return identity, nil
}

// CurrentSubscription fetches the billing snapshot. GET /subscription/current.
func (c *Client) CurrentSubscription(ctx context.Context, token string) (domainauth.Subscription, error) {
	var sub domainauth.Subscription
	err := c.do(ctx, callParams{
		Method: http.MethodGet,
		Path:   "/subscription/current",
		Token:  token,
	}, &sub)
	if err != nil {
		return domainauth.Subscription{}, err
	}
	return sub, nil
}

// callParams groups per-call inputs (≤3 params rule).
type callParams struct {
	Method string
	Path   string
	Token  string
	Body   any
}

func (c *Client) do(ctx context.Context, p callParams, dest any) error {
	var body io.Reader
	if p.Body != nil {
		data, err := json.Marshal(p.Body)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		body = bytes.NewReader(data)
	}

	if p.Token != "" {
		ctx = context.WithValue(ctx, tokenKey{}, p.Token)
	}

	req, err := http.NewRequestWithContext(ctx, p.Method, c.baseURL+p.Path, body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	if p.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "call %s %s", p.Method, p.Path)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if dest == nil {
		return nil
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(dest); decodeErr != nil {
		return apperrors.Wrapf(decodeErr, apperrors.ErrCodeUpstream, "decode %s response", p.Path)
	}
	return nil
}

// upstreamError is the FastAPI-style error envelope: {"detail": "..."}.
type upstreamError struct {
	Detail string `json:"detail"`
}

func statusError(resp *http.Response) error {
	detail := "upstream request failed"
	var envelope upstreamError
	if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&envelope); decodeErr == nil && envelope.Detail != "" {
		detail = envelope.Detail
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apperrors.Unauthenticated(detail)
	case http.StatusForbidden:
		return apperrors.Forbidden(detail)
	case http.StatusConflict:
		return apperrors.Conflict(detail)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.Validation(detail)
	case http.StatusPaymentRequired:
		return apperrors.PlanRequired(detail)
	case http.StatusTooManyRequests:
		return apperrors.RateLimited(detail)
	case http.StatusNotFound:
		return apperrors.NotFound(detail)
	default:
		return apperrors.Upstream(fmt.Sprintf("%s (status %d)", detail, resp.StatusCode))
	}
}
