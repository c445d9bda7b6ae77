package repository

import (
	"context"
	"errors"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
)

var ErrContentNotFound = errors.New("content not found")

// 共有リンクがすでに付いている（条件付き更新で0件）
var ErrShareLinkExists = errors.New("share link already exists")

// コンテンツの保存・取得・削除
type ContentRepository interface {
	// タグは名前で connect-or-create する
	Create(ctx context.Context, content *model.Content, tagNames []string) error
	ListByUserID(ctx context.Context, userID int64) ([]model.Content, error)
	FindByID(ctx context.Context, contentID int64) (*model.Content, error)
	// 共有リンクから1件（タグとユーザー付き）
	FindByShareLink(ctx context.Context, link string) (*model.Content, error)
	// link IS NULL のときだけ設定。すでにあればErrShareLinkExists。
	SetShareLink(ctx context.Context, contentID int64, link string) error
	ClearShareLink(ctx context.Context, contentID int64) error
	// 所有者一致のときだけ削除。
	DeleteByIDAndUserID(ctx context.Context, contentID int64, userID int64) error
}
