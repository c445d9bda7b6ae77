package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// リフレッシュトークンの保存・取得・失効・削除
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByID(ctx context.Context, tokenID string) (*model.RefreshToken, error)
	// 行ロック付き取得（Tx内で使う）
	FindByIDForUpdate(ctx context.Context, tokenID string) (*model.RefreshToken, error)
	// 未失効のときだけ失効させ、後継IDを記録する。未失効でなければErrRefreshTokenNotFound。
	MarkRotated(ctx context.Context, tokenID string, replacedBy string, revokedAt time.Time) error
	// ユーザーの未失効トークンを全部失効。件数を返す。
	RevokeAllByUserID(ctx context.Context, userID int64, revokedAt time.Time) (int64, error)
	// before より前に期限切れになった行を削除。件数を返す。
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
