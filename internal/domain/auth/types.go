package auth

// Package auth contains domain-level types for identity, subscription,
// and sessions. It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleKitchen Role = "kitchen"
	RoleRider   Role = "rider"
)

// Valid reports whether r is one of the known role literals.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleKitchen, RoleRider:
		return true
	}
	return false
}

// Plan represents a subscription tier.
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

// Valid reports whether p is one of the known plan literals.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// SubscriptionStatus is the lifecycle state of a subscription snapshot.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

// Identity is the authenticated principal returned by the upstream
// backend. It is read-only to this service and replaced wholesale on
// each bootstrap or login.
type Identity struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	IsActive     bool   `json:"is_active"`
	Plan         Plan   `json:"plan"`
	RestaurantID *int64 `json:"restaurant_id,omitempty"`
}

// Subscription is the billing snapshot fetched alongside the identity.
// Same lifecycle as Identity: replaced wholesale, never patched.
type Subscription struct {
	Plan      Plan               `json:"plan"`
	Status    SubscriptionStatus `json:"status"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
	Features  []string           `json:"features"`
}

// SessionHints are advisory role/plan values persisted for fast UI
// decisions before the next bootstrap completes. They never drive
// authoritative capability checks.
type SessionHints struct {
	Role         Role   `json:"role,omitempty"`
	Plan         Plan   `json:"plan,omitempty"`
	RestaurantID string `json:"restaurant_id,omitempty"`
}

// Session is the server-side record we persist for an authenticated
// user. ID is an opaque session identifier; Token is the upstream
// bearer credential. RememberedEmail is kept only when the user opted
// in; the password is never stored.
type Session struct {
	ID              string        `json:"id"`
	Token           string        `json:"token"`
	Identity        *Identity     `json:"identity,omitempty"`
	Subscription    *Subscription `json:"subscription,omitempty"`
	Hints           SessionHints  `json:"hints"`
	RememberedEmail string        `json:"remembered_email,omitempty"`
	ExpiresAt       time.Time     `json:"expires_at"`
}

// Authenticated reports whether the session carries a usable credential.
func (s Session) Authenticated() bool { return s.Token != "" }

// InitialState is the bootstrap result consumed by the dashboard shell.
// A zero value means "unauthenticated baseline".
type InitialState struct {
	CurrentUser  *Identity     `json:"currentUser,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

// Empty reports whether the state carries no identity at all.
func (s InitialState) Empty() bool {
	return s.CurrentUser == nil && s.Subscription == nil
}
