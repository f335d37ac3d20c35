package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemFP-Engine/internal/domain/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

func newRedisCache(t *testing.T) (*redis.FingerprintCache, *redis.Client) {
	t.Helper()
	skipUnlessIntegration(t)

	client, err := redis.NewClient(redisTestConfig(), testLogger())
	if err != nil {
		t.Skipf("skipping: Redis not available at %s: %v", redisAddr(), err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return redis.NewFingerprintCache(client, redisTestConfig(), testLogger(), nil), client
}

func TestRedisCache_MissThenHit(t *testing.T) {
	cache, _ := newRedisCache(t)
	ctx := context.Background()

	g := ethanolGraph(t)
	key := cache.Key(g.Digest(), chem.SchemeCircular, 2, 1024)
	defer func() { _ = cache.Invalidate(ctx, key) }()
	require.NoError(t, cache.Invalidate(ctx, key))

	computes := 0
	compute := func() (*fingerprint.Record, error) {
		computes++
		return fingerprint.ComputeCircular(g, 2, 1024)
	}

	first, hit, err := cache.GetOrCompute(ctx, key, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, computes)

	second, hit, err := cache.GetOrCompute(ctx, key, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, computes, "cache hit must not recompute")

	assert.Equal(t, first.Scheme, second.Scheme)
	assert.Equal(t, first.Radius, second.Radius)
	assert.True(t, first.Vector.Equal(second.Vector), "cached vector must round-trip exactly")
}

func TestRedisCache_InvalidateForcesRecompute(t *testing.T) {
	cache, _ := newRedisCache(t)
	ctx := context.Background()

	g := benzeneGraph(t)
	key := cache.Key(g.Digest(), chem.SchemeCircular, 1, 512)
	defer func() { _ = cache.Invalidate(ctx, key) }()

	computes := 0
	compute := func() (*fingerprint.Record, error) {
		computes++
		return fingerprint.ComputeCircular(g, 1, 512)
	}

	_, _, err := cache.GetOrCompute(ctx, key, compute)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, key))

	_, hit, err := cache.GetOrCompute(ctx, key, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, computes)
}

func TestRedisCache_DistinctParamsDistinctKeys(t *testing.T) {
	cache, _ := newRedisCache(t)

	g := ethanolGraph(t)
	keys := map[string]bool{
		cache.Key(g.Digest(), chem.SchemeCircular, 2, 1024): true,
		cache.Key(g.Digest(), chem.SchemeCircular, 3, 1024): true,
		cache.Key(g.Digest(), chem.SchemeCircular, 2, 2048): true,
		cache.Key(g.Digest(), chem.SchemeKeyed, 0, 166):     true,
	}
	assert.Len(t, keys, 4, "every parameter set must map to its own key")
}

func TestRedisClient_Ping(t *testing.T) {
	_, client := newRedisCache(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, client.Ping(ctx))
}
