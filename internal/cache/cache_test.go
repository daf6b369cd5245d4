package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacycle/pharma-cycle/internal/domain"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, New(client)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	_, c := setupTestRedis(t)
	ctx := context.Background()
	want := []domain.LocationCount{{Name: "Apollo", City: "Pune", Count: 3}}

	require.NoError(t, c.Set(ctx, "analytics:heatmap:a:b", want, time.Minute))

	var got []domain.LocationCount
	hit, err := c.Get(ctx, "analytics:heatmap:a:b", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)
}

func TestRedisCache_Miss(t *testing.T) {
	_, c := setupTestRedis(t)

	var got map[string]int
	hit, err := c.Get(context.Background(), "analytics:manufacturers:x:y", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, got)
}

func TestRedisCache_Expires(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"GSK": 1}, 30*time.Second))
	assert.True(t, mr.Exists("k"))

	mr.FastForward(31 * time.Second)

	var got map[string]int
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_CorruptValue(t *testing.T) {
	mr, c := setupTestRedis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var got map[string]int
	hit, err := c.Get(context.Background(), "k", &got)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestRedisCache_ServerDown(t *testing.T) {
	mr, c := setupTestRedis(t)
	mr.Close()

	err := c.Set(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}
