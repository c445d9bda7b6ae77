package limiter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// 試行回数オーバー
	ErrRateLimited = errors.New("rate limited")
	// redis に繋がらない
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// ログイン失敗回数を username / IP ごとに固定窓で数える。
// INCR + 初回だけ EXPIRE。
type LoginLimiter struct {
	redis       redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

// DI
func NewLoginLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		redis:       client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// 予算内かどうか確認する（カウントは増やさない）
func (l *LoginLimiter) Check(ctx context.Context, username, ip string) error {
	for _, key := range l.keys(username, ip) {
		v, err := l.redis.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		if n >= l.maxAttempts {
			return ErrRateLimited
		}
	}
	return nil
}

// 失敗を1回記録
func (l *LoginLimiter) RecordFailure(ctx context.Context, username, ip string) error {
	for _, key := range l.keys(username, ip) {
		count, err := l.redis.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if count == 1 {
			if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
		}
	}
	return nil
}

// ログイン成功時は username 側だけ消す
func (l *LoginLimiter) Reset(ctx context.Context, username string) error {
	if err := l.redis.Del(ctx, userKey(username)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *LoginLimiter) keys(username, ip string) []string {
	keys := []string{userKey(username)}
	if ip != "" {
		keys = append(keys, ipKey(ip))
	}
	return keys
}

func userKey(username string) string {
	return "login:user:" + username
}

func ipKey(ip string) string {
	return "login:ip:" + ip
}

// REDIS_URL 未設定のとき用
type Noop struct{}

func (Noop) Check(context.Context, string, string) error         { return nil }
func (Noop) RecordFailure(context.Context, string, string) error { return nil }
func (Noop) Reset(context.Context, string) error                 { return nil }
