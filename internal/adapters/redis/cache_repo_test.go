package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naidizakupku/portal/internal/testutil"
)

func TestCacheRepo_SetGetDelete(t *testing.T) {
	mr, client := testutil.NewMiniRedis(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "test:key:1", []byte("value"), 5*time.Minute))

		got, err := repo.Get(ctx, "test:key:1")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)
		assert.Equal(t, 5*time.Minute, mr.TTL("test:key:1"))
	})

	t.Run("get non-existent key", func(t *testing.T) {
		got, err := repo.Get(ctx, "non:existent")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "test:key:2", []byte("x"), 0))
		removed, err := repo.Delete(ctx, "test:key:2")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Delete(ctx, "test:key:2")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		_, err := repo.Get(ctx, "")
		require.Error(t, err)
		require.Error(t, repo.Set(ctx, "", nil, 0))
	})
}

func TestCacheRepo_SetTTL(t *testing.T) {
	mr, client := testutil.NewMiniRedis(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))

	updated, err := repo.SetTTL(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, time.Hour, mr.TTL("k"))

	updated, err = repo.SetTTL(ctx, "missing", time.Hour)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestCacheRepo_CompareAndDelete(t *testing.T) {
	mr, client := testutil.NewMiniRedis(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "fence", []byte("owner-b"), time.Minute))

	removed, err := repo.CompareAndDelete(ctx, "fence", []byte("owner-a"))
	require.NoError(t, err)
	assert.False(t, removed, "a different owner must not remove the key")
	assert.True(t, mr.Exists("fence"))

	removed, err = repo.CompareAndDelete(ctx, "fence", []byte("owner-b"))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, mr.Exists("fence"))

	removed, err = repo.CompareAndDelete(ctx, "fence", []byte("owner-b"))
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.CompareAndDelete(ctx, "", []byte("x"))
	require.Error(t, err)
}

func TestCacheRepo_SetIfNotExists(t *testing.T) {
	mr, client := testutil.NewMiniRedis(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	set, err := repo.SetIfNotExists(ctx, "lock", []byte("1"), 15*time.Second)
	require.NoError(t, err)
	assert.True(t, set)

	set, err = repo.SetIfNotExists(ctx, "lock", []byte("2"), 15*time.Second)
	require.NoError(t, err)
	assert.False(t, set)

	mr.FastForward(16 * time.Second)
	set, err = repo.SetIfNotExists(ctx, "lock", []byte("3"), 15*time.Second)
	require.NoError(t, err)
	assert.True(t, set)

	// Non-positive TTLs fall back to one second.
	set, err = repo.SetIfNotExists(ctx, "short", []byte("1"), 0)
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, time.Second, mr.TTL("short"))
}

func TestCacheRepo_DeletePrefix(t *testing.T) {
	mr, client := testutil.NewMiniRedis(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	require.NoError(t, mr.Set("portal:proxy:news/top", "a"))
	require.NoError(t, mr.Set("portal:proxy:admin/common/info", "b"))
	require.NoError(t, mr.Set("portal:cred:dev:token", "c"))

	removed, err := repo.DeletePrefix(ctx, "portal:proxy:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.True(t, mr.Exists("portal:cred:dev:token"))

	_, err = repo.DeletePrefix(ctx, "")
	require.Error(t, err)
}

func TestCacheRepo_Health(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	require.NoError(t, NewCacheRepo(client).Health(context.Background()))

	dead := NewCacheRepo(testutil.DeadRedisClient(t))
	require.Error(t, dead.Health(context.Background()))
}
