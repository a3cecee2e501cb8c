package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反（SKU・slug・クーポンコードなど）
	ErrDuplicate = errors.New("duplicate")
)

// 一覧検索
type ProductListQuery struct {
	Skip       int
	Limit      int
	Q          string
	CategoryID *int64
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindBySKU(ctx context.Context, sku string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error

	// 在庫が足りるときだけ減算してtrueを返す（行ロック前提）
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	Count(ctx context.Context) (int64, error)
}
