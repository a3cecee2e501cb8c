package repository

import (
	"app/internal/domain/model"
	"context"
)

type CartRepository interface {
	// ユーザーのカートを取得し、無ければ作る
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	SetCoupon(ctx context.Context, cartID int64, couponID *int64) error
	// 明細を全削除してクーポンも外す
	Clear(ctx context.Context, cartID int64) error
}

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は数量加算
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64) error
	// 絶対値で数量を更新
	UpdateQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error
	FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)
	DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error
}
