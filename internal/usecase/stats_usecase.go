package usecase

import (
	"context"
	"time"

	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type StatsUsecase struct {
	orderRepo   repo.OrderRepository
	userRepo    repo.UserRepository
	productRepo repo.ProductRepository
}

func NewStatsUsecase(
	orderRepo repo.OrderRepository,
	userRepo repo.UserRepository,
	productRepo repo.ProductRepository,
) *StatsUsecase {
	return &StatsUsecase{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

type DashboardOutput struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalOrders   int64           `json:"total_orders"`
	TotalUsers    int64           `json:"total_users"`
	TotalProducts int64           `json:"total_products"`
}

func (u *StatsUsecase) Dashboard(ctx context.Context) (*DashboardOutput, error) {
	sales, err := u.orderRepo.SumPaidTotal(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := u.orderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := u.userRepo.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}
	products, err := u.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardOutput{
		TotalSales:    sales,
		TotalOrders:   orders,
		TotalUsers:    customers,
		TotalProducts: products,
	}, nil
}

type CouponPerformanceOutput struct {
	Code          string          `json:"code"`
	TimesUsed     int64           `json:"times_used"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
}

type FinancialOutput struct {
	TotalSales    decimal.Decimal           `json:"total_sales"`
	TotalOrders   int64                     `json:"total_orders"`
	TotalDiscount decimal.Decimal           `json:"total_discount"`
	AverageTicket decimal.Decimal           `json:"average_ticket"`
	Coupons       []CouponPerformanceOutput `json:"coupons"`
}

// Financial は支払済み注文を期間で絞って集計する。
func (u *StatsUsecase) Financial(ctx context.Context, from, to *time.Time) (*FinancialOutput, error) {
	summary, err := u.orderRepo.Summarize(ctx, from, to)
	if err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if summary.TotalOrders > 0 {
		avg = summary.TotalSales.Div(decimal.NewFromInt(summary.TotalOrders)).Round(2)
	}

	perf, err := u.orderRepo.CouponPerformance(ctx)
	if err != nil {
		return nil, err
	}
	coupons := make([]CouponPerformanceOutput, 0, len(perf))
	for _, p := range perf {
		coupons = append(coupons, CouponPerformanceOutput{
			Code:          p.Code,
			TimesUsed:     p.TimesUsed,
			TotalDiscount: p.TotalDiscount,
		})
	}

	return &FinancialOutput{
		TotalSales:    summary.TotalSales,
		TotalOrders:   summary.TotalOrders,
		TotalDiscount: summary.TotalDiscount,
		AverageTicket: avg,
		Coupons:       coupons,
	}, nil
}
