package wishlist

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-core/pkg/errors"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"github.com/angelmondragon/storefront-core/pkg/redis"
	"github.com/google/uuid"
)

const testWishlistKey = "sf:wishlist:sess-1"

func newRedisServiceForTest(kv kvStore) *RedisService {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return &RedisService{kv: kv, key: testWishlistKey, logg: logg}
}

func TestRedisToggleRoundTrip(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	service := newRedisServiceForTest(kv)
	ctx := context.Background()
	id := variantID("coat")

	added, err := service.Toggle(ctx, id)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !added {
		t.Fatal("expected first toggle to add")
	}

	found, err := service.Contains(ctx, id)
	if err != nil {
		t.Fatalf("contains failed: %v", err)
	}
	if !found {
		t.Fatal("expected variant wishlisted after add")
	}

	added, err = service.Toggle(ctx, id)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if added {
		t.Fatal("expected second toggle to remove")
	}
	if _, ok := kv.data[testWishlistKey]; ok {
		t.Fatal("expected key deleted once the wishlist is empty")
	}
}

func TestRedisListPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	service := newRedisServiceForTest(newFakeKV())
	ctx := context.Background()

	want := []uuid.UUID{variantID("first"), variantID("second"), variantID("third")}
	for _, id := range want {
		if _, err := service.Toggle(ctx, id); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
	}

	ids, err := service.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("id %d: expected %s got %s", i, want[i], ids[i])
		}
	}
}

func TestRedisCorruptPayloadIsEmpty(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	kv.data[testWishlistKey] = "{not json"
	service := newRedisServiceForTest(kv)

	ids, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("corruption must not surface, got %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("corrupt payload must be treated as empty, got %v", ids)
	}
}

func TestRedisClear(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	service := newRedisServiceForTest(kv)
	ctx := context.Background()

	if _, err := service.Toggle(ctx, variantID("coat")); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if err := service.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := kv.data[testWishlistKey]; ok {
		t.Fatal("expected key deleted")
	}
}

func TestRedisSurfacesIOErrors(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	kv.getErr = errors.New("connection reset")
	service := newRedisServiceForTest(kv)

	_, err := service.List(context.Background())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStorage {
		t.Fatalf("expected storage error, got %v", err)
	}
}

type fakeKV struct {
	data   map[string]string
	getErr error
	setErr error
	delErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.data[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return value, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value.(string)
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	if f.delErr != nil {
		return f.delErr
	}
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}
