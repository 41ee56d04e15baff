package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}
	return client, mr
}

func TestKey(t *testing.T) {
	assert.Equal(t, "orderTracking:order-1", Key(KeyOrderTracking, "order-1"))
	assert.Equal(t, "orders", Key(KeyOrders))
}

func TestRedisInvalidator_DeletesCachedEntries(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()
	defer mr.Close()

	ctx := context.Background()
	inv := NewRedisInvalidator(client)

	require.NoError(t, client.Set(ctx, "querycache:orders", "[...]", 0).Err())
	require.NoError(t, client.Set(ctx, "querycache:orderTracking:o1", "{...}", 0).Err())

	require.NoError(t, inv.Invalidate(ctx, Key(KeyOrders), Key(KeyOrderTracking, "o1")))

	assert.False(t, mr.Exists("querycache:orders"))
	assert.False(t, mr.Exists("querycache:orderTracking:o1"))
}

func TestRedisInvalidator_IdempotentOnMissingKeys(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()
	defer mr.Close()

	ctx := context.Background()
	inv := NewRedisInvalidator(client)

	// Invalidating keys that were never cached must not error, twice over.
	require.NoError(t, inv.Invalidate(ctx, Key(KeyCart)))
	require.NoError(t, inv.Invalidate(ctx, Key(KeyCart)))
	require.NoError(t, inv.Invalidate(ctx))
}

func TestMemoryInvalidator_RecordsInOrder(t *testing.T) {
	inv := NewMemoryInvalidator()
	ctx := context.Background()

	require.NoError(t, inv.Invalidate(ctx, "a", "b"))
	require.NoError(t, inv.Invalidate(ctx, "c"))

	assert.Equal(t, []string{"a", "b", "c"}, inv.Keys())
}
