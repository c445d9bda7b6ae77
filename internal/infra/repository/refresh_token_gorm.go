package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	repo "github.com/shinobi04/ThinkStore-backend/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type refreshTokenGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewRefreshTokenRepository(db *gorm.DB) repo.RefreshTokenRepository {
	return &refreshTokenGormRepository{db: db}
}

// リフレッシュトークンを保存し。
func (r *refreshTokenGormRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	//タイムアウトやキャンセルをDB処理に伝える
	if err := r.db.WithContext(ctx).Omit("User").Create(token).Error; err != nil {
		return err
	}
	return nil
}

// IDで1件検索します。
func (r *refreshTokenGormRepository) FindByID(ctx context.Context, tokenID string) (*model.RefreshToken, error) {
	return r.find(r.db.WithContext(ctx), tokenID)
}

// SELECT ... FOR UPDATE。同じトークンの同時refreshを直列化する。
func (r *refreshTokenGormRepository) FindByIDForUpdate(ctx context.Context, tokenID string) (*model.RefreshToken, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tokenID)
}

func (r *refreshTokenGormRepository) find(q *gorm.DB, tokenID string) (*model.RefreshToken, error) {
	var token model.RefreshToken

	err := q.Where("id = ?", tokenID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrRefreshTokenNotFound
		}
		return nil, err
	}

	return &token, nil
}

// revoked_at と replaced_by_token_id をセット。
func (r *refreshTokenGormRepository) MarkRotated(ctx context.Context, tokenID string, replacedBy string, revokedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", tokenID).
		Updates(map[string]interface{}{
			"revoked_at":           revokedAt,
			"replaced_by_token_id": replacedBy,
		})

	if result.Error != nil {
		return result.Error
	}

	// 更新件数が0なら「すでに失効/存在しない」
	if result.RowsAffected == 0 {
		return repo.ErrRefreshTokenNotFound
	}

	return nil
}

// 指定ユーザーの未失効トークンを全部失効させます。
func (r *refreshTokenGormRepository) RevokeAllByUserID(ctx context.Context, userID int64, revokedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", revokedAt)

	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// 期限切れをまとめて削除。
func (r *refreshTokenGormRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&model.RefreshToken{})

	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
