package redisx

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := New(addr)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("skipping Redis integration tests: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestDedupClaimOnce(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	d := &Dedup{Redis: rdb, Consumer: "test-" + uuid.NewString()}
	id := uuid.NewString()

	first, err := d.Claim(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.Claim(ctx, id)
	require.NoError(t, err)
	assert.False(t, again)

	ttl, err := rdb.TTL(ctx, d.key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, TTLDedup-TTLDedup/10)

	require.NoError(t, d.Release(ctx, id))
	n, err := rdb.Exists(ctx, d.key(id)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIdempotencyLookup(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	idem := &Idempotency{Redis: rdb}
	key := uuid.NewString()

	id, err := idem.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, idem.Remember(ctx, key, "order-1"))
	id, err = idem.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "order-1", id)
}
