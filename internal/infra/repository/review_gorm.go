package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

// DI
func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

func (r *ReviewGormRepository) ListByProductID(ctx context.Context, productID int64, skip int, limit int) ([]model.ProductReview, error) {
	var rs []model.ProductReview
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id desc").
		Offset(skip).
		Limit(limit).
		Find(&rs).Error; err != nil {
		return []model.ProductReview{}, err
	}
	return rs, nil
}

func (r *ReviewGormRepository) FindByID(ctx context.Context, reviewID int64) (model.ProductReview, error) {
	var rv model.ProductReview
	err := r.db.WithContext(ctx).First(&rv, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductReview{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductReview{}, err
	}
	return rv, nil
}

// 同一ユーザー×商品の2件目はErrDuplicate
func (r *ReviewGormRepository) Create(ctx context.Context, rv model.ProductReview) (model.ProductReview, error) {
	err := r.db.WithContext(ctx).Create(&rv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ProductReview{}, repo.ErrDuplicate
	}
	if err != nil {
		return model.ProductReview{}, err
	}
	return rv, nil
}

func (r *ReviewGormRepository) Delete(ctx context.Context, reviewID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.ProductReview{}, reviewID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
