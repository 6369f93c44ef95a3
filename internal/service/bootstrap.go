package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	"github.com/fooddash/console-api/internal/observability/metrics"
	"github.com/fooddash/console-api/internal/observability/statsd"
	"github.com/fooddash/console-api/internal/ports"
)

// Canonical fetch identifiers used as state-cache keys. Seeding under
// these keys means any later read of the same resource is instant and
// consistent with what the sequencer committed.
const (
	CacheKeyCurrentUser  = "/auth/me"
	CacheKeySubscription = "/subscription/current"
)

// BootstrapServiceOptions groups dependencies for BootstrapService.
type BootstrapServiceOptions struct {
	Gateway  ports.BackendGateway
	Sessions ports.SessionStore
	Cache    ports.StateCache

	// RequireSubscription controls whether the deployment fetches the
	// billing snapshot alongside the identity. When true, both fetches
	// must succeed before any state is committed.
	RequireSubscription bool

	// CacheTTL bounds the seeded snapshots. Defaults to 5m.
	CacheTTL time.Duration

	// Metrics receives bootstrap counters and timings. Optional.
	Metrics statsd.Sink

	Logger *slog.Logger
}

// BootstrapService produces the initial application state once per
// dashboard load: read the persisted session, refresh identity and
// subscription from the backend, seed the shared cache, and commit the
// refreshed session as a single write.
type BootstrapService struct {
	gateway             ports.BackendGateway
	sessions            ports.SessionStore
	cache               ports.StateCache
	requireSubscription bool
	cacheTTL            time.Duration
	metrics             statsd.Sink
	logger              *slog.Logger
}

// NewBootstrapService constructs a BootstrapService.
func NewBootstrapService(opts BootstrapServiceOptions) *BootstrapService {
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BootstrapService{
		gateway:             opts.Gateway,
		sessions:            opts.Sessions,
		cache:               opts.Cache,
		requireSubscription: opts.RequireSubscription,
		cacheTTL:            ttl,
		metrics:             opts.Metrics,
		logger:              logger,
	}
}

// BootstrapResult carries the initial state plus the fail-closed
// redirect signal. Absence of a session is a normal empty state, not
// an error.
type BootstrapResult struct {
	State           domainauth.InitialState
	RedirectToLogin bool
}

// Bootstrap runs the startup sequence for one session.
//
// No persisted token means the unauthenticated baseline: an empty
// state with zero network calls. With a token, identity and
// subscription are fetched concurrently and joined fail-fast; either
// failure abandons both and the session is cleared (fail closed, never
// partial). On success the refreshed snapshot is committed as one
// session write, so a racing bootstrap resolves last-committed-wins.
func (s *BootstrapService) Bootstrap(ctx context.Context, sessionID string) (BootstrapResult, error) {
	if sessionID == "" {
		return BootstrapResult{}, nil
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil || !sess.Authenticated() {
		// Missing or tokenless session is the unauthenticated baseline.
		return BootstrapResult{}, nil
	}

	started := time.Now()

	var (
		identity domainauth.Identity
		sub      domainauth.Subscription
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var fetchErr error
		identity, fetchErr = s.gateway.CurrentUser(gctx, sess.Token)
		return fetchErr
	})
	if s.requireSubscription {
		g.Go(func() error {
			var fetchErr error
			sub, fetchErr = s.gateway.CurrentSubscription(gctx, sess.Token)
			return fetchErr
		})
	}

	if joinErr := g.Wait(); joinErr != nil {
		return s.failClosed(ctx, sessionID, joinErr)
	}

	sess.Identity = &identity
	if s.requireSubscription {
		sess.Subscription = &sub
	}
	sess.Hints = hintsFor(identity, sess.Subscription)

	// Commit the whole snapshot in one write before exposing state.
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return s.failClosed(ctx, sessionID, saveErr)
	}

	s.seedCache(ctx, sess)

	metrics.EmitBootstrap(s.metrics, metrics.BootstrapMetric{
		Result:   metrics.ResultSuccess,
		Duration: time.Since(started),
	})

	return BootstrapResult{State: domainauth.InitialState{
		CurrentUser:  sess.Identity,
		Subscription: sess.Subscription,
	}}, nil
}

// failClosed clears the session completely and signals the login
// redirect. Transient failures are indistinguishable from a revoked
// credential here; the system never guesses a previous good state.
func (s *BootstrapService) failClosed(ctx context.Context, sessionID string, cause error) (BootstrapResult, error) {
	s.logger.WarnContext(ctx, "bootstrap failed, clearing session", "error", cause)
	metrics.EmitBootstrap(s.metrics, metrics.BootstrapMetric{Result: metrics.ResultError, Err: cause})

	if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
		s.logger.WarnContext(ctx, "clear session after failed bootstrap", "error", delErr)
	}
	if s.cache != nil {
		if purgeErr := s.cache.Purge(ctx, CacheKeyCurrentUser, CacheKeySubscription); purgeErr != nil {
			s.logger.WarnContext(ctx, "purge state cache after failed bootstrap", "error", purgeErr)
		}
	}
	return BootstrapResult{RedirectToLogin: true}, nil
}

// seedCache primes the shared cache. Best-effort: a cache write failure
// degrades later reads to refetches, it does not fail the bootstrap.
func (s *BootstrapService) seedCache(ctx context.Context, sess domainauth.Session) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Seed(ctx, CacheKeyCurrentUser, sess.Identity, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "seed current-user cache", "error", err)
	}
	if sess.Subscription != nil {
		if err := s.cache.Seed(ctx, CacheKeySubscription, sess.Subscription, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "seed subscription cache", "error", err)
		}
	}
}

// hintsFor derives the advisory role/plan hints persisted alongside
// the session for instant UI decisions before the next bootstrap.
func hintsFor(identity domainauth.Identity, sub *domainauth.Subscription) domainauth.SessionHints {
	hints := domainauth.SessionHints{Role: identity.Role, Plan: identity.Plan}
	if sub != nil && sub.Plan != "" {
		hints.Plan = sub.Plan
	}
	if identity.RestaurantID != nil {
		hints.RestaurantID = strconv.FormatInt(*identity.RestaurantID, 10)
	}
	return hints
}
