package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T, max int) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginLimiter(client, max, time.Minute), s
}

func TestLoginLimiter_BlocksAfterMaxFailures(t *testing.T) {
	l, _ := setupLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Check(ctx, "alice", "10.0.0.1"))
		require.NoError(t, l.RecordFailure(ctx, "alice", "10.0.0.1"))
	}

	assert.ErrorIs(t, l.Check(ctx, "alice", "10.0.0.1"), ErrRateLimited)
}

func TestLoginLimiter_IPCounterSharedAcrossUsers(t *testing.T) {
	l, _ := setupLimiter(t, 2)
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "alice", "10.0.0.1"))
	require.NoError(t, l.RecordFailure(ctx, "bobby", "10.0.0.1"))

	// 別ユーザーでも同じIPならブロック
	assert.ErrorIs(t, l.Check(ctx, "carol", "10.0.0.1"), ErrRateLimited)
	// 別IPなら通る
	assert.NoError(t, l.Check(ctx, "carol", "10.0.0.2"))
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	l, s := setupLimiter(t, 1)
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "alice", ""))
	assert.ErrorIs(t, l.Check(ctx, "alice", ""), ErrRateLimited)

	s.FastForward(2 * time.Minute)
	assert.NoError(t, l.Check(ctx, "alice", ""))
}

func TestLoginLimiter_ResetClearsUserCounter(t *testing.T) {
	l, _ := setupLimiter(t, 1)
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "alice", ""))
	require.NoError(t, l.Reset(ctx, "alice"))
	assert.NoError(t, l.Check(ctx, "alice", ""))
}

func TestLoginLimiter_RedisDown(t *testing.T) {
	l, s := setupLimiter(t, 1)
	s.Close()

	err := l.RecordFailure(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}
