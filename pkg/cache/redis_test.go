package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/nstil/pkg/journal"
)

// redisForTest connects to NSTIL_TEST_REDIS_URL and returns a key prefix
// unique to the test.
func redisForTest(t *testing.T) (*Redis, *RedisKV, string) {
	t.Helper()
	url := os.Getenv("NSTIL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("NSTIL_TEST_REDIS_URL not set")
	}
	client, err := DialRedis(context.Background(), url)
	require.NoError(t, err)
	prefix := "nstil-test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		_ = NewRedis(client).DeletePrefix(context.Background(), prefix)
		client.Close()
	})
	return NewRedis(client), NewRedisKV(client, prefix), prefix
}

func TestRedisBackend(t *testing.T) {
	r, _, prefix := redisForTest(t)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, prefix+"missing")
	require.NoError(t, err)
	assert.False(t, ok)

	for i := range 250 {
		require.NoError(t, r.Set(ctx, prefix+"list:"+uuid.NewString(), []byte{byte(i)}, time.Minute))
	}
	require.NoError(t, r.Set(ctx, prefix+"detail:1", []byte("keep"), time.Minute))

	require.NoError(t, r.DeletePrefix(ctx, prefix+"list:"))

	val, ok, err := r.Get(ctx, prefix+"detail:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "keep", string(val))

	n := 0
	iter := r.client.Scan(ctx, 0, prefix+"list:*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	require.NoError(t, iter.Err())
	assert.Zero(t, n)
}

func TestRedisEntries(t *testing.T) {
	r, _, prefix := redisForTest(t)
	api := newCountingAPI()
	c := NewEntries(api, r, WithPrefix(prefix), WithTTL(time.Minute))
	ctx := context.Background()

	_, err := c.List(ctx, journal.ListParams{})
	require.NoError(t, err)
	_, err = c.List(ctx, journal.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, api.lists)

	_, err = c.Create(ctx, journal.EntryCreate{Body: "b"})
	require.NoError(t, err)
	_, err = c.List(ctx, journal.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, api.lists)
}

func TestRedisKV(t *testing.T) {
	_, kv, _ := redisForTest(t)
	ctx := context.Background()

	v, err := kv.Get(ctx, "theme_mode")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, kv.Set(ctx, "theme_mode", "oled"))
	v, err = kv.Get(ctx, "theme_mode")
	require.NoError(t, err)
	assert.Equal(t, "oled", v)
}
