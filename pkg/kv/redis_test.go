package kv

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/starcoin-api/pkg/config"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: server.Addr()}))
	t.Cleanup(func() { _ = store.Close() })
	return store, server
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t)
	exerciseStore(t, store)
}

func TestRedisStoreKeysEscapesGlob(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	for _, key := range []string{"st*r_a", "st*r_b", "stXr_c", "st?r_d", "c[ab]_x", "ca_y"} {
		require.NoError(t, store.Set(ctx, key, []byte("1")))
	}

	cases := []struct {
		prefix string
		want   []string
	}{
		{prefix: "st*r_", want: []string{"st*r_a", "st*r_b"}},
		{prefix: "st?r_", want: []string{"st?r_d"}},
		{prefix: "c[ab]_", want: []string{"c[ab]_x"}},
		{prefix: "none", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.prefix, func(t *testing.T) {
			keys, err := store.Keys(ctx, tc.prefix)
			require.NoError(t, err)
			assert.Equal(t, tc.want, keys)
		})
	}
}

func TestRedisStoreStoresWithoutExpiry(t *testing.T) {
	store, server := newRedisStore(t)
	require.NoError(t, store.Set(context.Background(), "starcoin_students", []byte("[]")))
	assert.Zero(t, server.TTL("starcoin_students"))
}

func TestRedisStoreReportsServerErrors(t *testing.T) {
	store, server := newRedisStore(t)
	server.SetError("ERR unavailable")

	_, err := store.Get(context.Background(), "starcoin_students")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "redis get starcoin_students")
}

func TestOpenRedis(t *testing.T) {
	server := miniredis.RunT(t)
	client, err := OpenRedis(config.RedisConfig{Host: server.Host(), Port: mustPort(t, server.Port())})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	server.Close()
	_, err = OpenRedis(config.RedisConfig{Host: "127.0.0.1", Port: mustPort(t, server.Port())})
	assert.Error(t, err)
}

func mustPort(t *testing.T, raw string) int {
	t.Helper()
	port, err := strconv.Atoi(raw)
	require.NoError(t, err)
	return port
}
