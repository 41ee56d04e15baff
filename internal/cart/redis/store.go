// Package redis stores one cart per table session. Carts live for the
// session TTL and are last-write-wins; cross-tab conflict resolution is
// handled nowhere below the storage layer.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dinehub/internal/models"

	"github.com/go-redis/redis/v8"
)

type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func cartKey(tenantID, sessionID string) string {
	return fmt.Sprintf("cart:%s:%s", tenantID, sessionID)
}

func (s *Store) Load(ctx context.Context, tenantID, sessionID string) (*models.Cart, error) {
	raw, err := s.Client.Get(ctx, cartKey(tenantID, sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("corrupt cart for session %s: %w", sessionID, err)
	}
	return &cart, nil
}

func (s *Store) Save(ctx context.Context, cart *models.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, cartKey(cart.TenantID, cart.SessionID), raw, s.TTL).Err()
}

func (s *Store) Delete(ctx context.Context, tenantID, sessionID string) error {
	return s.Client.Del(ctx, cartKey(tenantID, sessionID)).Err()
}
