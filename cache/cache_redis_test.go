package cache

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisWithClient(client, "test", time.Minute), mr
}

func TestRedis_StoreMarksIdentitySeen(t *testing.T) {
	r, mr := newTestRedis(t)

	identity := []byte{0xde, 0xad, 0xbe, 0xef}
	require.NoError(t, r.Store(context.Background(), identity))

	key := "test:" + hex.EncodeToString(identity)
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestRedis_StoreIsIdempotent(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	identity := []byte("work-unit-1")
	require.NoError(t, r.Store(ctx, identity))
	require.NoError(t, r.Store(ctx, identity))
}

func TestRedis_StoreFailsWhenServerDown(t *testing.T) {
	r, mr := newTestRedis(t)
	mr.Close()

	err := r.Store(context.Background(), []byte("x"))
	require.Error(t, err)
}

func TestNewRedisWithClient_Defaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	r := NewRedisWithClient(client, "", 0)
	assert.Equal(t, "dedup", r.prefix)
	assert.Equal(t, 24*time.Hour, r.ttl)

	assert.Panics(t, func() { NewRedisWithClient(nil, "", 0) })
}

func TestMemory_StoreAndContains(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	assert.False(t, m.Contains([]byte("a")))
	require.NoError(t, m.Store(ctx, []byte("a")))
	require.NoError(t, m.Store(ctx, []byte("a")))
	require.NoError(t, m.Store(ctx, []byte("b")))

	assert.True(t, m.Contains([]byte("a")))
	assert.True(t, m.Contains([]byte("b")))
	assert.Equal(t, 2, m.Len())
}
