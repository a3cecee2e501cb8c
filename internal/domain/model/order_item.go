package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。purchase時点の価格と商品名を必ず保存。
// 商品が後から消えてもProductIDはNULLで残す。
type OrderItem struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         int64           `gorm:"not null;index" json:"order_id"`
	ProductID       *int64          `gorm:"index" json:"product_id,omitempty"`
	ProductName     string          `gorm:"type:varchar(255);not null" json:"product_name"`
	PriceAtPurchase decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_at_purchase"`
	Quantity        int64           `gorm:"not null" json:"quantity"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
