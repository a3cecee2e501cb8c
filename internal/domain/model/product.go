package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SKUは一意。画像は外部アセットホストに置き、URLとpublic_idだけ持つ。
// 重量・寸法は送料計算に使う。
type Product struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU           string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name          string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock         int64           `gorm:"not null;default:0" json:"stock"`
	CategoryID    int64           `gorm:"not null;index" json:"category_id"`
	ImageURL      string          `gorm:"type:text" json:"image_url,omitempty"`
	ImagePublicID string          `gorm:"type:varchar(255)" json:"-"`

	WeightKg float64 `gorm:"not null;default:0" json:"weight_kg"`
	HeightCm float64 `gorm:"not null;default:0" json:"height_cm"`
	WidthCm  float64 `gorm:"not null;default:0" json:"width_cm"`
	LengthCm float64 `gorm:"not null;default:0" json:"length_cm"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
