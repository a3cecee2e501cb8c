package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`

	// プロフィール（配送先にも使う）
	FullName          string `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone             string `gorm:"type:varchar(20);not null" json:"phone"`
	AddressStreet     string `gorm:"type:varchar(255);not null" json:"address_street"`
	AddressNumber     string `gorm:"type:varchar(20);not null" json:"address_number"`
	AddressComplement string `gorm:"type:varchar(255)" json:"address_complement,omitempty"`
	AddressZip        string `gorm:"type:varchar(9);not null" json:"address_zip"`
	AddressCity       string `gorm:"type:varchar(255);not null" json:"address_city"`
	AddressState      string `gorm:"type:varchar(2);not null" json:"address_state"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
