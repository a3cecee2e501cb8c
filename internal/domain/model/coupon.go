package model

import "time"

// 割引クーポン。codeは一意。percentは(0,100]。
type Coupon struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code            string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	DiscountPercent float64    `gorm:"not null" json:"discount_percent"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 期限・有効フラグをまとめて判定
func (c Coupon) IsValidAt(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return false
	}
	return true
}
