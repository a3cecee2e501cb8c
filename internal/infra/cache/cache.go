package cache

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrCacheMiss = errors.New("cache miss")

// 商品詳細の読み取りキャッシュ。
type ProductCache interface {
	Get(ctx context.Context, productID int64) (model.Product, error)
	Set(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, productID int64) error
}

// キャッシュ無し構成用
type NopProductCache struct{}

func (NopProductCache) Get(ctx context.Context, productID int64) (model.Product, error) {
	return model.Product{}, ErrCacheMiss
}

func (NopProductCache) Set(ctx context.Context, p model.Product) error { return nil }

func (NopProductCache) Delete(ctx context.Context, productID int64) error { return nil }
