package janitor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// 期限切れrefreshTokenを消す（AuthUsecaseが実装）
type Purger interface {
	PurgeExpiredTokens(ctx context.Context, retention time.Duration) (int64, error)
}

// interval ごとに掃除する。ctx がキャンセルされたら戻る。
func Run(ctx context.Context, p Purger, interval, retention time.Duration, log *zap.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpiredTokens(ctx, retention)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn("purge expired refresh tokens failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("purged expired refresh tokens", zap.Int64("deleted", n))
			}
		}
	}
}
