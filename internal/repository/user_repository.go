package repository

import (
	"context"
	"errors"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// username の一意制約違反
var ErrUsernameTaken = errors.New("username already taken")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（重複はErrUsernameTaken）
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//usernameからユーザーを一件取得する。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
