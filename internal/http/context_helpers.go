package httpx

import (
	"context"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// accessKey carries the capability map computed for the request.
type accessKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// GetSessionFromContext retrieves the session from the request context.
// Maintained for convenience; prefer GetUserSessionFromContext when you need presence info.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if s, ok := GetUserSessionFromContext(ctx); ok {
		return s
	}
	return nil
}

// SetAccessInContext returns a child context carrying the request's
// capability map.
func SetAccessInContext(ctx context.Context, access domainauth.CapabilityMap) context.Context {
	return context.WithValue(ctx, accessKey{}, access)
}

// GetAccessFromContext returns the capability map computed for the
// request. Absent a guard, the zero map (all capabilities false) is
// returned, which fails closed.
func GetAccessFromContext(ctx context.Context) domainauth.CapabilityMap {
	if access, ok := ctx.Value(accessKey{}).(domainauth.CapabilityMap); ok {
		return access
	}
	return domainauth.CapabilityMap{}
}
