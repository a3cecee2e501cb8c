package repository

import (
	"app/internal/domain/model"
	"context"
)

type ReviewRepository interface {
	ListByProductID(ctx context.Context, productID int64, skip int, limit int) ([]model.ProductReview, error)
	FindByID(ctx context.Context, reviewID int64) (model.ProductReview, error)
	// 同一ユーザー×商品の2件目はErrDuplicate
	Create(ctx context.Context, r model.ProductReview) (model.ProductReview, error)
	Delete(ctx context.Context, reviewID int64) error
}
