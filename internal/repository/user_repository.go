package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// アクティブ切替・ロール変更・最終ログイン更新など
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context, skip int, limit int) ([]model.User, error)
	Delete(ctx context.Context, userID int64) error
	CountCustomers(ctx context.Context) (int64, error)
}
