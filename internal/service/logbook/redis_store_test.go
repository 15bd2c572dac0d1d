package logbook

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/settings"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "")
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleRecord("log_1", "s1", "hi", "there", 2)))
	require.NoError(t, store.Append(ctx, sampleRecord("log_2", "s1", "more", "sure", 1)))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "log_1", records[0].ID)
	assert.Equal(t, 2, records[0].Metadata.Tokens())

	length, err := client.LLen(ctx, DefaultLogKey).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 2, length)

	require.NoError(t, store.Clear(ctx))
	records, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRedisStoreSkipsCorruptEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "logs")
	ctx := context.Background()

	require.NoError(t, client.RPush(ctx, "logs", "not-json").Err())
	require.NoError(t, store.Append(ctx, sampleRecord("log_1", "s1", "hi", "there", 2)))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestServiceOverRedisSurvivesRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	first := NewService(ctx, settings.Default(), Options{Durable: NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")})
	require.NoError(t, first.Append(ctx, sampleRecord("log_1", "s1", "hi", "there", 2)))

	second := NewService(ctx, settings.Default(), Options{Durable: NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")})
	require.NoError(t, second.Load(ctx))
	require.Len(t, second.List(ctx), 1)
	assert.Equal(t, "log_1", second.List(ctx)[0].ID)
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient("::not a url")
	assert.Error(t, err)
}
