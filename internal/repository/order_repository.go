package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

type AdminOrderListFilter struct {
	Skip   int
	Limit  int
	Status string
}

// 集計（ダッシュボード用）
type FinancialSummary struct {
	TotalSales    decimal.Decimal
	TotalOrders   int64
	TotalDiscount decimal.Decimal
}

type CouponPerformance struct {
	Code          string
	TimesUsed     int64
	TotalDiscount decimal.Decimal
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// 管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	// ダッシュボード集計
	SumPaidTotal(ctx context.Context) (decimal.Decimal, error)
	Count(ctx context.Context) (int64, error)
	Summarize(ctx context.Context, from *time.Time, to *time.Time) (FinancialSummary, error)
	CouponPerformance(ctx context.Context) ([]CouponPerformance, error)
}

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
}
