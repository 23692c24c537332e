package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestRedisSetGet(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	defer client.Close()
	c := NewRedis(client, WithPrefix("hennalash"))

	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	found, val, err := GetTyped[string](ctx, c, "key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value", val)
}

func TestRedisMiss(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	defer client.Close()
	c := NewRedis(client, WithPrefix("hennalash"))

	found, val, err := c.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)
}

func TestRedisDelete(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	defer client.Close()
	c := NewRedis(client, WithPrefix("hennalash"))

	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	ok, err := c.Delete(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	found, _, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisClearRespectsPrefix(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	defer client.Close()
	c := NewRedis(client, WithPrefix("hennalash"))
	other := NewRedis(client, WithPrefix("other"))

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, other.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, c.Clear(ctx))

	found, _, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)
	found, _, err = other.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRedisStructRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	defer client.Close()
	c := NewRedis(client, WithPrefix("hennalash"))

	type review struct {
		Rating  int    `msgpack:"rating"`
		Comment string `msgpack:"comment"`
	}
	require.NoError(t, c.Set(ctx, "review", review{Rating: 5, Comment: "magnifique"}, time.Minute))
	found, got, err := GetTyped[review](ctx, c, "review")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 5, got.Rating)
}
