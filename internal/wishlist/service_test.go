package wishlist

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/storefront-core/pkg/config"
	"github.com/angelmondragon/storefront-core/pkg/db"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*SQLiteService, *db.Client) {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Path:         filepath.Join(t.TempDir(), "wishlist.db"),
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	service, err := NewSQLiteService(client, "sess-1", logg)
	require.NoError(t, err)
	return service, client
}

func variantID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}

func TestToggleAddsAndRemoves(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()
	id := variantID("coat")

	added, err := service.Toggle(ctx, id)
	require.NoError(t, err)
	assert.True(t, added)

	found, err := service.Contains(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)

	added, err = service.Toggle(ctx, id)
	require.NoError(t, err)
	assert.False(t, added)

	found, err = service.Contains(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()

	first := variantID("first")
	second := variantID("second")
	third := variantID("third")
	for _, id := range []uuid.UUID{first, second, third} {
		_, err := service.Toggle(ctx, id)
		require.NoError(t, err)
	}

	ids, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, []uuid.UUID{first, second, third}, ids)
}

func TestClearEmptiesWishlist(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()

	_, err := service.Toggle(ctx, variantID("coat"))
	require.NoError(t, err)
	require.NoError(t, service.Clear(ctx))

	ids, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestScopedBySession(t *testing.T) {
	service, client := setupService(t)
	ctx := context.Background()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	other, err := NewSQLiteService(client, "sess-2", logg)
	require.NoError(t, err)

	_, err = service.Toggle(ctx, variantID("coat"))
	require.NoError(t, err)
	_, err = other.Toggle(ctx, variantID("boots"))
	require.NoError(t, err)
	require.NoError(t, other.Clear(ctx))

	ids, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
