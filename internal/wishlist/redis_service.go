package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-core/pkg/errors"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"github.com/angelmondragon/storefront-core/pkg/redis"
	"github.com/google/uuid"
)

// Wishlists share the guest cart's lifetime; the key expires with the session.
const wishlistTTL = 30 * 24 * time.Hour

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisService keeps the wishlist as a JSON array of variant ids under one
// namespaced key per session.
type RedisService struct {
	kv   kvStore
	key  string
	logg *logger.Logger
}

var _ Service = (*RedisService)(nil)

// NewRedisService scopes the service to one session key.
func NewRedisService(client *redis.Client, sessionID string, logg *logger.Logger) (*RedisService, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RedisService{kv: client, key: client.WishlistKey(sessionID), logg: logg}, nil
}

// Toggle flips wishlist membership for a variant and reports the new state.
func (s *RedisService) Toggle(ctx context.Context, variantID uuid.UUID) (bool, error) {
	ctx = s.logg.WithVariantID(ctx, variantID.String())

	ids, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	filtered := ids[:0:0]
	removed := false
	for _, id := range ids {
		if id == variantID {
			removed = true
			continue
		}
		filtered = append(filtered, id)
	}
	if !removed {
		filtered = append(filtered, variantID)
	}

	if err := s.save(ctx, filtered); err != nil {
		return removed, err
	}
	if removed {
		s.logg.Debug(ctx, "wishlist item removed")
	} else {
		s.logg.Debug(ctx, "wishlist item added")
	}
	return !removed, nil
}

// Contains reports whether the variant is currently wishlisted.
func (s *RedisService) Contains(ctx context.Context, variantID uuid.UUID) (bool, error) {
	ids, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == variantID {
			return true, nil
		}
	}
	return false, nil
}

// List returns the wishlisted variant ids in the order they were saved.
func (s *RedisService) List(ctx context.Context) ([]uuid.UUID, error) {
	return s.load(ctx)
}

// Clear removes the wishlist key.
func (s *RedisService) Clear(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear wishlist")
	}
	return nil
}

func (s *RedisService) load(ctx context.Context) ([]uuid.UUID, error) {
	payload, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load wishlist")
	}

	var ids []uuid.UUID
	if err := json.Unmarshal([]byte(payload), &ids); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "corrupt wishlist payload, treating as empty")
		return nil, nil
	}
	return ids, nil
}

func (s *RedisService) save(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		if err := s.kv.Del(ctx, s.key); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save wishlist")
		}
		return nil
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encode wishlist")
	}
	if err := s.kv.Set(ctx, s.key, string(payload), wishlistTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save wishlist")
	}
	return nil
}
