// internal/common/database/redis_test.go
package database

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedClient(t *testing.T) (*RedisClient, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	t.Cleanup(func() { db.Close() })
	return &RedisClient{Client: db}, mock
}

func TestRedisGetHitAndMiss(t *testing.T) {
	client, mock := newMockedClient(t)
	ctx := context.Background()

	mock.ExpectGet("score:rep-1:deterministic").SetVal(`{"total":67}`)
	val, err := client.Get(ctx, "score:rep-1:deterministic")
	require.NoError(t, err)
	assert.Equal(t, `{"total":67}`, val)

	// Cache misses surface as redis.Nil so callers can tell them from
	// real failures.
	mock.ExpectGet("score:rep-2:deterministic").RedisNil()
	_, err = client.Get(ctx, "score:rep-2:deterministic")
	assert.ErrorIs(t, err, redis.Nil)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSetWithExpiration(t *testing.T) {
	client, mock := newMockedClient(t)

	mock.ExpectSet("score:rep-1:pattern", "payload", time.Hour).SetVal("OK")
	err := client.Set(context.Background(), "score:rep-1:pattern", "payload", time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDel(t *testing.T) {
	client, mock := newMockedClient(t)

	mock.ExpectDel("score:rep-1:pattern", "score:rep-1:deterministic").SetVal(2)
	err := client.Del(context.Background(), "score:rep-1:pattern", "score:rep-1:deterministic")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPingFailure(t *testing.T) {
	client, mock := newMockedClient(t)

	mock.ExpectPing().SetErr(redis.ErrClosed)
	err := client.Ping(context.Background())
	assert.ErrorContains(t, err, "redis ping failed")
}
