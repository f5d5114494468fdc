package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisStoreWithClient(client, "declschema:"), mr
}

func TestRedisStore(t *testing.T) {
	s, mr := setupTestRedis(t)
	defer mr.Close()
	defer s.Close()

	testStoreContract(t, s)
}

func TestRedisStore_KeysArePrefixed(t *testing.T) {
	s, mr := setupTestRedis(t)
	defer mr.Close()
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "build", []byte("{}")))

	value, err := mr.Get("declschema:build")
	require.NoError(t, err)
	assert.Equal(t, "{}", value)

	// Keys outside the prefix are not listed.
	require.NoError(t, mr.Set("other:thing", "x"))
	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"build"}, names)
}

func TestNewRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr()}, "p:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(context.Background(), "x", []byte("1")))
	assert.True(t, mr.Exists("p:x"))
}

func TestNewRedisStore_ConnectionError(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{Addr: "localhost:99999"}, "p:")
	assert.Error(t, err)
}

func TestOpen_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := DefaultConfig()
	cfg.Backend = BackendRedis
	cfg.Redis.Addr = mr.Addr()

	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &RedisStore{}, s)
}
