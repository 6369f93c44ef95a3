package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	"github.com/fooddash/console-api/internal/testutil"
)

func TestStateCacheRoundTrip(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	cache := NewStateCache(client)
	ctx := context.Background()

	identity := domainauth.Identity{ID: 1, Email: "owner@example.com", Role: domainauth.RoleOwner}
	require.NoError(t, cache.Seed(ctx, "/auth/me", identity, time.Minute))

	var got domainauth.Identity
	require.NoError(t, cache.Get(ctx, "/auth/me", &got))
	assert.Equal(t, identity, got)
}

func TestStateCacheMiss(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	cache := NewStateCache(client)

	var got domainauth.Identity
	assert.ErrorIs(t, cache.Get(context.Background(), "/auth/me", &got), ErrCacheMiss)
}

func TestStateCachePurge(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	cache := NewStateCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Seed(ctx, "/auth/me", "a", time.Minute))
	require.NoError(t, cache.Seed(ctx, "/subscription/current", "b", time.Minute))

	require.NoError(t, cache.Purge(ctx, "/auth/me", "/subscription/current"))

	var got string
	assert.ErrorIs(t, cache.Get(ctx, "/auth/me", &got), ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "/subscription/current", &got), ErrCacheMiss)

	assert.NoError(t, cache.Purge(ctx))
}

func TestStateCacheRejectsEmptyKey(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	cache := NewStateCache(client)

	assert.Error(t, cache.Seed(context.Background(), "", "v", time.Minute))

	var got string
	assert.Error(t, cache.Get(context.Background(), "", &got))
}

func TestStateCacheTTL(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	cache := NewStateCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Seed(ctx, "/auth/me", "v", 5*time.Minute))

	ttl, err := client.TTL(ctx, "state:/auth/me").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 4*time.Minute)
}
