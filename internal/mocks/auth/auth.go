package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	"github.com/fooddash/console-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.RoleMapper   = (*RoleMapperStub)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (ports.SSOIdentity, error)

	// Deterministic values for predictable testing
	AuthURL         string
	StatePrefix     string
	NoncePrefix     string
	DefaultIdentity ports.SSOIdentity

	// Internal state tracking for deterministic behavior
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultIdentity: ports.SSOIdentity{
			Subject:   "mock-user-1",
			Email:     "mock.user@example.com",
			Groups:    []string{"managers"},
			Token:     "mock-token",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

// Begin returns a deterministic auth URL, state, and nonce.
func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	state := fmt.Sprintf("%s-%d", m.StatePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", m.NoncePrefix, m.callCount)
	return m.AuthURL + "?state=" + state, state, nonce, nil
}

// Exchange returns the default identity unless overridden.
func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.SSOIdentity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	if in.Code == "" {
		return ports.SSOIdentity{}, errors.New("mock provider: code is required")
	}
	return m.DefaultIdentity, nil
}

// RoleMapperStub maps every group set to a fixed role.
type RoleMapperStub struct {
	Role domainauth.Role
}

// Map returns the configured role regardless of groups.
func (s RoleMapperStub) Map([]string) domainauth.Role {
	if s.Role == "" {
		return domainauth.RoleRider
	}
	return s.Role
}
