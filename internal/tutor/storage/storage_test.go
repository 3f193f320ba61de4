package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, KeyUserLanguage)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, KeyUserLanguage, "tamil"))
	v, ok, err := kv.Get(ctx, KeyUserLanguage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tamil", v)

	require.NoError(t, kv.Set(ctx, KeyUserLanguage, "hindi"))
	v, _, _ = kv.Get(ctx, KeyUserLanguage)
	assert.Equal(t, "hindi", v)

	require.NoError(t, kv.Remove(ctx, KeyUserLanguage))
	_, ok, err = kv.Get(ctx, KeyUserLanguage)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Remove(ctx, KeyUserLanguage), "removing a missing key is not an error")
	assert.Error(t, kv.Set(ctx, "../escape", "x"))
}

func TestMemoryStore(t *testing.T) {
	exerciseKV(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	exerciseKV(t, fs)

	require.NoError(t, fs.Set(context.Background(), KeyUserMemory, `{"a":1}`))
	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	v, ok, err := reopened.Get(context.Background(), KeyUserMemory)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, v)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	exerciseKV(t, NewRedisStore(rdb, "cli", 0))

	store := NewRedisStore(rdb, "cli", time.Hour)
	require.NoError(t, store.Set(context.Background(), KeyScenarioObjectives, "[]"))
	assert.True(t, mr.Exists("tutor:cli:"+KeyScenarioObjectives))
	assert.Equal(t, time.Hour, mr.TTL("tutor:cli:"+KeyScenarioObjectives))
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	_, _, err := NewRedisStore(rdb, "", 0).Get(context.Background(), KeyUserMemory)
	assert.Error(t, err)
}
