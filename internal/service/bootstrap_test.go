package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fooddash/console-api/internal/adapters/memstore"
	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	apperrors "github.com/fooddash/console-api/internal/errors"
	"github.com/fooddash/console-api/internal/mocks"
	"github.com/fooddash/console-api/internal/testutil"
)

type bootstrapFixture struct {
	svc      *BootstrapService
	gateway  *mocks.MockBackendGateway
	sessions *memstore.SessionStore
	cache    *memstore.StateCache
}

func newBootstrapFixture(t *testing.T, requireSubscription bool) bootstrapFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockBackendGateway(ctrl)
	sessions := memstore.NewSessionStore()
	cache := memstore.NewStateCache()
	svc := NewBootstrapService(BootstrapServiceOptions{
		Gateway:             gateway,
		Sessions:            sessions,
		Cache:               cache,
		RequireSubscription: requireSubscription,
	})
	return bootstrapFixture{svc: svc, gateway: gateway, sessions: sessions, cache: cache}
}

func TestBootstrapNoSessionMakesNoCalls(t *testing.T) {
	f := newBootstrapFixture(t, true)
	// The mock controller fails the test if any gateway call happens.

	res, err := f.svc.Bootstrap(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, res.State.Empty())
	assert.False(t, res.RedirectToLogin)
}

func TestBootstrapUnknownSessionIsBaseline(t *testing.T) {
	f := newBootstrapFixture(t, true)

	res, err := f.svc.Bootstrap(context.Background(), "missing")
	require.NoError(t, err)
	assert.True(t, res.State.Empty())
	assert.False(t, res.RedirectToLogin)
}

func TestBootstrapSuccess(t *testing.T) {
	f := newBootstrapFixture(t, true)
	ctx := context.Background()

	sess := testutil.NewSession().Build()
	require.NoError(t, f.sessions.Save(ctx, sess))

	identity := testutil.NewIdentity().WithRestaurant(42).Build()
	sub := domainauth.Subscription{Plan: domainauth.PlanPro, Status: domainauth.SubscriptionActive}

	f.gateway.EXPECT().CurrentUser(gomock.Any(), sess.Token).Return(identity, nil)
	f.gateway.EXPECT().CurrentSubscription(gomock.Any(), sess.Token).Return(sub, nil)

	res, err := f.svc.Bootstrap(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, res.RedirectToLogin)
	require.NotNil(t, res.State.CurrentUser)
	assert.Equal(t, identity, *res.State.CurrentUser)
	require.NotNil(t, res.State.Subscription)
	assert.Equal(t, sub, *res.State.Subscription)

	// The refreshed snapshot was committed as one session write.
	stored, err := f.sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Identity)
	assert.Equal(t, identity, *stored.Identity)
	assert.Equal(t, domainauth.PlanPro, stored.Hints.Plan)
	assert.Equal(t, "42", stored.Hints.RestaurantID)

	// The shared cache was seeded under the canonical fetch keys.
	var cachedIdentity domainauth.Identity
	require.NoError(t, f.cache.Get(ctx, CacheKeyCurrentUser, &cachedIdentity))
	assert.Equal(t, identity, cachedIdentity)

	var cachedSub domainauth.Subscription
	require.NoError(t, f.cache.Get(ctx, CacheKeySubscription, &cachedSub))
	assert.Equal(t, sub, cachedSub)
}

func TestBootstrapWithoutSubscriptionFetch(t *testing.T) {
	f := newBootstrapFixture(t, false)
	ctx := context.Background()

	sess := testutil.NewSession().Build()
	require.NoError(t, f.sessions.Save(ctx, sess))

	identity := testutil.NewIdentity().Build()
	f.gateway.EXPECT().CurrentUser(gomock.Any(), sess.Token).Return(identity, nil)
	// No CurrentSubscription expectation: calling it fails the test.

	res, err := f.svc.Bootstrap(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, res.State.CurrentUser)
	assert.Nil(t, res.State.Subscription)

	var cached domainauth.Subscription
	assert.ErrorIs(t, f.cache.Get(ctx, CacheKeySubscription, &cached), memstore.ErrCacheMiss)
}

func TestBootstrapFailsClosed(t *testing.T) {
	f := newBootstrapFixture(t, true)
	ctx := context.Background()

	sess := testutil.NewSession().Build()
	require.NoError(t, f.sessions.Save(ctx, sess))

	// Pre-seed stale state that must be purged on failure.
	require.NoError(t, f.cache.Seed(ctx, CacheKeyCurrentUser, testutil.NewIdentity().Build(), time.Minute))

	f.gateway.EXPECT().
		CurrentUser(gomock.Any(), sess.Token).
		Return(domainauth.Identity{}, apperrors.Unauthenticated("token revoked"))
	// The sibling fetch races the failure; it may or may not complete.
	f.gateway.EXPECT().
		CurrentSubscription(gomock.Any(), sess.Token).
		Return(domainauth.Subscription{Plan: domainauth.PlanPro}, nil).
		AnyTimes()

	res, err := f.svc.Bootstrap(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, res.RedirectToLogin)
	assert.True(t, res.State.Empty())

	// Session cleared, never partially updated.
	_, getErr := f.sessions.Get(ctx, sess.ID)
	assert.ErrorIs(t, getErr, memstore.ErrNotFound)

	var cached domainauth.Identity
	assert.ErrorIs(t, f.cache.Get(ctx, CacheKeyCurrentUser, &cached), memstore.ErrCacheMiss)
}

func TestBootstrapSubscriptionFailureAbandonsIdentity(t *testing.T) {
	f := newBootstrapFixture(t, true)
	ctx := context.Background()

	sess := testutil.NewSession().Build()
	require.NoError(t, f.sessions.Save(ctx, sess))

	f.gateway.EXPECT().
		CurrentUser(gomock.Any(), sess.Token).
		Return(testutil.NewIdentity().Build(), nil).
		AnyTimes()
	f.gateway.EXPECT().
		CurrentSubscription(gomock.Any(), sess.Token).
		Return(domainauth.Subscription{}, apperrors.Upstream("billing down"))

	res, err := f.svc.Bootstrap(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, res.RedirectToLogin)
	// The successful identity fetch is discarded along with the session.
	assert.True(t, res.State.Empty())

	_, getErr := f.sessions.Get(ctx, sess.ID)
	assert.ErrorIs(t, getErr, memstore.ErrNotFound)
}

func TestHintsForPrefersSubscriptionPlan(t *testing.T) {
	identity := testutil.NewIdentity().WithPlan(domainauth.PlanFree).WithRestaurant(7).Build()
	sub := domainauth.Subscription{Plan: domainauth.PlanEnterprise}

	hints := hintsFor(identity, &sub)
	assert.Equal(t, domainauth.RoleOwner, hints.Role)
	assert.Equal(t, domainauth.PlanEnterprise, hints.Plan)
	assert.Equal(t, "7", hints.RestaurantID)

	hints = hintsFor(identity, nil)
	assert.Equal(t, domainauth.PlanFree, hints.Plan)
}
