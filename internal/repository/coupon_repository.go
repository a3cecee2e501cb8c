package repository

import (
	"app/internal/domain/model"
	"context"
)

type CouponRepository interface {
	List(ctx context.Context, skip int, limit int) ([]model.Coupon, error)
	FindByID(ctx context.Context, id int64) (model.Coupon, error)
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	Update(ctx context.Context, c model.Coupon) error
	Delete(ctx context.Context, id int64) error
}
