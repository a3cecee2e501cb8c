package model

import "time"

// パスワード再設定用のワンタイムトークン。
type PasswordResetToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	Email     string    `gorm:"type:varchar(255);not null;index" json:"-"`
	Token     string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
	Used      bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
}
