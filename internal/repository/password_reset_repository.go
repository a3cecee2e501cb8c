package repository

import (
	"app/internal/domain/model"
	"context"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, t model.PasswordResetToken) error
	// 未使用・期限内のトークンを1件取得
	FindValidByToken(ctx context.Context, token string) (model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, tokenID int64) error
}
