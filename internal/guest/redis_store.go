package guest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-core/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-core/pkg/errors"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"github.com/angelmondragon/storefront-core/pkg/redis"
)

// Guest carts are abandoned eventually; the key expires rather than living
// forever in redis.
const guestCartTTL = 30 * 24 * time.Hour

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStore keeps the guest cart as a JSON document under a fixed
// namespaced key, one key per session.
type RedisStore struct {
	kv   kvStore
	key  string
	logg *logger.Logger
}

// NewRedisStore scopes the store to one session key.
func NewRedisStore(client *redis.Client, sessionID string, logg *logger.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RedisStore{kv: client, key: client.GuestCartKey(sessionID), logg: logg}, nil
}

// Load returns the persisted lines, treating a missing key or a corrupt
// payload as an empty cart. Corruption is logged, not surfaced.
func (s *RedisStore) Load(ctx context.Context) ([]cart.LineItem, error) {
	payload, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load guest cart")
	}

	var items []cart.LineItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "corrupt guest cart payload, treating as empty")
		return nil, nil
	}
	return items, nil
}

// Save overwrites the persisted cart with the provided snapshot.
func (s *RedisStore) Save(ctx context.Context, items []cart.LineItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encode guest cart")
	}
	if err := s.kv.Set(ctx, s.key, string(payload), guestCartTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save guest cart")
	}
	return nil
}

// Clear removes the persisted cart key.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear guest cart")
	}
	return nil
}
