// Package cache is the boundary to the client-visible query cache. Keys are
// segment paths joined with ':'; invalidating a key that is not cached is a
// no-op, so invalidation is idempotent and needs no locking around the sink.
package cache

import (
	"context"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
)

// Well-known key segments. The set of keys an event touches is fixed; see
// bridge.invalidationKeys.
const (
	KeyOrderTracking  = "orderTracking"
	KeyOrders         = "orders"
	KeyCart           = "cart"
	KeyTables         = "tables"
	KeyTablesOverview = "tables:overview"
)

// Key joins segments into a cache key, e.g. Key("orderTracking", orderID).
func Key(segments ...string) string {
	return strings.Join(segments, ":")
}

type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// RedisInvalidator deletes cached query results from Redis. DEL on a missing
// key is a no-op, which keeps repeated invalidations harmless.
type RedisInvalidator struct {
	Client *redis.Client
	Prefix string
}

func NewRedisInvalidator(client *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{Client: client, Prefix: "querycache:"}
}

func (r *RedisInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.Prefix + key
	}
	return r.Client.Del(ctx, prefixed...).Err()
}

// MemoryInvalidator records invalidated keys. Used in tests and as a default
// sink when no cache backend is wired.
type MemoryInvalidator struct {
	mu   sync.Mutex
	keys []string
}

func NewMemoryInvalidator() *MemoryInvalidator {
	return &MemoryInvalidator{}
}

func (m *MemoryInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, keys...)
	return nil
}

// Keys returns a copy of every key invalidated so far, in order.
func (m *MemoryInvalidator) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}
