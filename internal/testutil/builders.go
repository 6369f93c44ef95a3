// Package testutil provides testing utilities and helpers for the console gateway.
package testutil

import (
	"time"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	"github.com/fooddash/console-api/internal/domain/model"
)

// IdentityBuilder provides a fluent interface for building Identity values for testing.
type IdentityBuilder struct {
	identity domainauth.Identity
}

// NewIdentity creates a new IdentityBuilder with sensible defaults.
func NewIdentity() *IdentityBuilder {
	return &IdentityBuilder{
		identity: domainauth.Identity{
			ID:       1,
			Email:    "owner@example.com",
			Role:     domainauth.RoleOwner,
			IsActive: true,
			Plan:     domainauth.PlanFree,
		},
	}
}

// WithID sets the user ID.
func (b *IdentityBuilder) WithID(id int64) *IdentityBuilder {
	b.identity.ID = id
	return b
}

// WithEmail sets the email.
func (b *IdentityBuilder) WithEmail(email string) *IdentityBuilder {
	b.identity.Email = email
	return b
}

// WithRole sets the role.
func (b *IdentityBuilder) WithRole(role domainauth.Role) *IdentityBuilder {
	b.identity.Role = role
	return b
}

// WithPlan sets the identity-level plan hint.
func (b *IdentityBuilder) WithPlan(plan domainauth.Plan) *IdentityBuilder {
	b.identity.Plan = plan
	return b
}

// WithRestaurant binds the identity to a restaurant.
func (b *IdentityBuilder) WithRestaurant(id int64) *IdentityBuilder {
	b.identity.RestaurantID = &id
	return b
}

// Inactive marks the identity as deactivated.
func (b *IdentityBuilder) Inactive() *IdentityBuilder {
	b.identity.IsActive = false
	return b
}

// Build returns the constructed Identity.
func (b *IdentityBuilder) Build() domainauth.Identity {
	return b.identity
}

// SessionBuilder provides a fluent interface for building Session values for testing.
type SessionBuilder struct {
	session domainauth.Session
}

// NewSession creates a new SessionBuilder with sensible defaults.
func NewSession() *SessionBuilder {
	identity := NewIdentity().Build()
	return &SessionBuilder{
		session: domainauth.Session{
			ID:        "sess-1",
			Token:     "token-1",
			Identity:  &identity,
			Hints:     domainauth.SessionHints{Role: identity.Role, Plan: identity.Plan},
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

// WithID sets the session ID.
func (b *SessionBuilder) WithID(id string) *SessionBuilder {
	b.session.ID = id
	return b
}

// WithToken sets the bearer token.
func (b *SessionBuilder) WithToken(token string) *SessionBuilder {
	b.session.Token = token
	return b
}

// WithIdentity sets the identity snapshot.
func (b *SessionBuilder) WithIdentity(identity domainauth.Identity) *SessionBuilder {
	b.session.Identity = &identity
	b.session.Hints = domainauth.SessionHints{Role: identity.Role, Plan: identity.Plan}
	return b
}

// WithSubscription sets the subscription snapshot.
func (b *SessionBuilder) WithSubscription(sub domainauth.Subscription) *SessionBuilder {
	b.session.Subscription = &sub
	b.session.Hints.Plan = sub.Plan
	return b
}

// WithRememberedEmail sets the remembered login email.
func (b *SessionBuilder) WithRememberedEmail(email string) *SessionBuilder {
	b.session.RememberedEmail = email
	return b
}

// ExpiresIn sets the expiry relative to now.
func (b *SessionBuilder) ExpiresIn(d time.Duration) *SessionBuilder {
	b.session.ExpiresAt = time.Now().Add(d)
	return b
}

// Build returns the constructed Session.
func (b *SessionBuilder) Build() domainauth.Session {
	return b.session
}

// DeviceRequestBuilder provides a fluent interface for building RecordDeviceRequest objects for testing.
type DeviceRequestBuilder struct {
	req model.RecordDeviceRequest
}

// NewDeviceRequest creates a new DeviceRequestBuilder with sensible defaults.
func NewDeviceRequest() *DeviceRequestBuilder {
	return &DeviceRequestBuilder{
		req: model.RecordDeviceRequest{
			UserID:      1,
			SessionID:   "sess-1",
			Fingerprint: "fp-1",
			Label:       "Firefox",
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0",
			IPAddress:   "203.0.113.7",
		},
	}
}

// WithUserID sets the user ID.
func (b *DeviceRequestBuilder) WithUserID(id int64) *DeviceRequestBuilder {
	b.req.UserID = id
	return b
}

// WithSessionID sets the session ID.
func (b *DeviceRequestBuilder) WithSessionID(id string) *DeviceRequestBuilder {
	b.req.SessionID = id
	return b
}

// WithFingerprint sets the device fingerprint.
func (b *DeviceRequestBuilder) WithFingerprint(fp string) *DeviceRequestBuilder {
	b.req.Fingerprint = fp
	return b
}

// WithUserAgent sets the user agent string.
func (b *DeviceRequestBuilder) WithUserAgent(ua string) *DeviceRequestBuilder {
	b.req.UserAgent = ua
	return b
}

// Build returns the constructed RecordDeviceRequest.
func (b *DeviceRequestBuilder) Build() model.RecordDeviceRequest {
	return b.req
}
