package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	"github.com/fooddash/console-api/internal/domain/route"
	"github.com/fooddash/console-api/internal/observability/statsd"
	"github.com/fooddash/console-api/internal/ports"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      AuthServiceInterface
	Bootstrap BootstrapServiceInterface
	Devices   DeviceServiceInterface
	Cache     ports.StateCache

	CookieDomain string
	// SSOEnabled registers the SSO begin/callback routes.
	SSOEnabled bool
	// Metrics counts guard denials. Optional.
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// GuardedRoutes is the declarative route table. Every protected route
// must name both its access capability and, when plan-gated, its
// required plan; Validate rejects anything implicit. The table is the
// single source of truth the router and the startup check share.
func GuardedRoutes() []route.Descriptor {
	return []route.Descriptor{
		{
			Path:   "GET /api/devices",
			Access: domainauth.CapIsAuthenticated,
			Guards: []route.GuardStage{route.StageAuthenticate},
		},
		{
			Path:   "DELETE /api/devices/{id}",
			Access: domainauth.CapIsAuthenticated,
			Guards: []route.GuardStage{route.StageAuthenticate},
		},
		{
			Path:   "GET /api/plan",
			Access: domainauth.CapIsAuthenticated,
			Guards: []route.GuardStage{route.StageAuthenticate},
		},
		{
			Path:         "GET /api/realtime/token",
			Access:       domainauth.CapIsAuthenticated,
			RequiredPlan: domainauth.PlanPro,
			// Declaration order is deliberately reversed here; evaluation
			// still authenticates first.
			Guards: []route.GuardStage{route.StagePlan, route.StageAuthenticate},
		},
	}
}

// NewRouter creates and configures the HTTP router. The guarded route
// table is validated up front: a route with an unknown capability or a
// half-declared plan gate fails startup, not the first request.
func NewRouter(services RouterServices) (http.Handler, error) {
	guarded := GuardedRoutes()
	if err := route.ValidateAll(guarded); err != nil {
		return nil, fmt.Errorf("route table: %w", err)
	}
	byPath := make(map[string]route.Descriptor, len(guarded))
	for _, d := range guarded {
		byPath[d.Path] = d
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Bootstrap:    services.Bootstrap,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	deviceHandlers := &DeviceHandlers{Svc: services.Devices}
	planHandlers := &PlanHandlers{Cache: services.Cache}

	// Public surface. Login and register are the credential allow-list;
	// status and bootstrap must answer for anonymous callers too.
	mux.HandleFunc("POST /auth/login", authHandlers.Login)
	mux.HandleFunc("POST /auth/register", authHandlers.Register)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/status", authHandlers.Status)
	mux.HandleFunc("GET /api/bootstrap", authHandlers.InitialState)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.SSOEnabled {
		mux.HandleFunc("GET /auth/sso", authHandlers.SSOBegin)
		mux.HandleFunc("GET /auth/callback", authHandlers.SSOCallback)
	}

	// Guarded surface.
	handleGuarded := func(pattern string, h http.HandlerFunc) error {
		desc, ok := byPath[pattern]
		if !ok {
			return fmt.Errorf("route %s is not in the guarded route table", pattern)
		}
		mux.Handle(pattern, Guard(desc, services.Metrics)(h))
		return nil
	}
	if err := handleGuarded("GET /api/devices", deviceHandlers.List); err != nil {
		return nil, err
	}
	if err := handleGuarded("DELETE /api/devices/{id}", deviceHandlers.Revoke); err != nil {
		return nil, err
	}
	if err := handleGuarded("GET /api/plan", planHandlers.Current); err != nil {
		return nil, err
	}
	if err := handleGuarded("GET /api/realtime/token", planHandlers.RealtimeToken); err != nil {
		return nil, err
	}

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = SessionLoader(services.Auth)(handler)
	handler = BrowserDetection()(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler, nil
}

// PublicPath reports whether the request path is part of the public
// surface (no credential required).
func PublicPath(path string) bool {
	switch path {
	case "/auth/login", "/auth/register", "/auth/status", "/healthz":
		return true
	}
	return strings.HasPrefix(path, "/auth/sso") || path == "/auth/callback"
}
