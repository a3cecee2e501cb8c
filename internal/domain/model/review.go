package model

import "time"

// 商品レビュー。1ユーザーにつき同じ商品へ1件まで。
type ProductReview struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index:idx_user_product_review,unique" json:"product_id"`
	UserID    int64     `gorm:"not null;index:idx_user_product_review,unique" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
