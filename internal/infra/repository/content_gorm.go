package repository

import (
	"context"
	"errors"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	repo "github.com/shinobi04/ThinkStore-backend/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type contentGormRepository struct {
	db *gorm.DB
}

func NewContentGormRepository(db *gorm.DB) repo.ContentRepository {
	return &contentGormRepository{db: db}
}

// タグを connect-or-create してからコンテンツと中間テーブルを保存
func (r *contentGormRepository) Create(ctx context.Context, content *model.Content, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := upsertTags(tx, tagNames)
		if err != nil {
			return err
		}
		content.Tags = tags

		// Tags.* を外すとタグ本体はupsertせず、中間テーブルだけ作る
		if err := tx.Omit("User", "Tags.*").Create(content).Error; err != nil {
			if isUniqueViolation(err) {
				return repo.ErrShareLinkExists
			}
			return err
		}
		return nil
	})
}

func upsertTags(tx *gorm.DB, names []string) ([]model.Tag, error) {
	if len(names) == 0 {
		return []model.Tag{}, nil
	}

	rows := make([]model.Tag, 0, len(names))
	for _, n := range names {
		rows = append(rows, model.Tag{Name: n})
	}

	// 同時作成でも一意制約で落ちないように DO NOTHING
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return nil, err
	}

	var tags []model.Tag
	if err := tx.Where("name IN ?", names).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// 新しい順
func (r *contentGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Content, error) {
	contents := []model.Content{}

	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&contents).Error
	if err != nil {
		return nil, err
	}
	return contents, nil
}

func (r *contentGormRepository) FindByID(ctx context.Context, contentID int64) (*model.Content, error) {
	var c model.Content

	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id = ?", contentID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrContentNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *contentGormRepository) FindByShareLink(ctx context.Context, link string) (*model.Content, error) {
	var c model.Content

	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("User").
		Where("link = ?", link).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrContentNotFound
		}
		return nil, err
	}
	return &c, nil
}

// link IS NULL の行だけ更新。二重発行を防ぐ。
func (r *contentGormRepository) SetShareLink(ctx context.Context, contentID int64, link string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Content{}).
		Where("id = ? AND link IS NULL", contentID).
		Update("link", link)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// 0件：存在しないか、先に誰かが付けた
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Content{}).Where("id = ?", contentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return repo.ErrContentNotFound
	}
	return repo.ErrShareLinkExists
}

func (r *contentGormRepository) ClearShareLink(ctx context.Context, contentID int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Content{}).
		Where("id = ?", contentID).
		Update("link", nil)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrContentNotFound
	}
	return nil
}

// 所有者一致のときだけ削除（中間テーブルも消す）
func (r *contentGormRepository) DeleteByIDAndUserID(ctx context.Context, contentID int64, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Content
		err := tx.Where("id = ? AND user_id = ?", contentID, userID).First(&c).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrContentNotFound
			}
			return err
		}

		return tx.Select("Tags").Delete(&c).Error
	})
}
