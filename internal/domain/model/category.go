package model

import "time"

// 商品を束ねるカテゴリ。slugはURL用で一意。
type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null;index" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Slug        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
