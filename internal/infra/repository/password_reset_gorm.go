package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type PasswordResetGormRepository struct {
	db *gorm.DB
}

func NewPasswordResetGormRepository(db *gorm.DB) *PasswordResetGormRepository {
	return &PasswordResetGormRepository{db: db}
}

func (r *PasswordResetGormRepository) Create(ctx context.Context, t model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(&t).Error
}

// 未使用・期限内だけ有効
func (r *PasswordResetGormRepository) FindValidByToken(ctx context.Context, token string) (model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND used = ? AND expires_at > ?", token, false, time.Now()).
		First(&t).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PasswordResetToken{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PasswordResetToken{}, err
	}
	return t, nil
}

func (r *PasswordResetGormRepository) MarkUsed(ctx context.Context, tokenID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.PasswordResetToken{}).
		Where("id = ?", tokenID).
		Update("used", true)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
