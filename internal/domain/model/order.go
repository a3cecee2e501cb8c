package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// 前方向のみ許可。cancelledへは終端以外から可。
// delivered / cancelled は終端。
func CanTransition(from OrderStatus, to OrderStatus) bool {
	if from == to {
		return false
	}
	switch to {
	case OrderStatusPaid:
		return from == OrderStatusPendingPayment
	case OrderStatusShipped:
		return from == OrderStatusPaid
	case OrderStatusDelivered:
		return from == OrderStatusShipped
	case OrderStatusCancelled:
		return from != OrderStatusDelivered && from != OrderStatusCancelled
	default:
		return false
	}
}

func IsValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPendingPayment, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// チェックアウト時点のスナップショット。作成後はstatus以外不変。
type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64           `gorm:"not null;index" json:"user_id"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount_amount"`
	CouponCodeUsed string          `gorm:"type:varchar(64)" json:"coupon_code_used,omitempty"`
	PaymentRef     *string         `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
