package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 管理者用の注文一覧（ステータス絞り込み可）
func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Order{})

	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	if err := tx.Order("id desc").Offset(f.Skip).Limit(f.Limit).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

// paid注文の売上合計
func (r *OrderGormRepository) SumPaidTotal(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Where("status = ?", model.OrderStatusPaid).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *OrderGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// 期間指定の売上サマリ
func (r *OrderGormRepository) Summarize(ctx context.Context, from *time.Time, to *time.Time) (repo.FinancialSummary, error) {
	tx := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status = ?", model.OrderStatusPaid)

	if from != nil {
		tx = tx.Where("created_at >= ?", *from)
	}
	if to != nil {
		tx = tx.Where("created_at <= ?", *to)
	}

	var row struct {
		TotalSales    decimal.Decimal
		TotalOrders   int64
		TotalDiscount decimal.Decimal
	}
	err := tx.Select(
		"COALESCE(SUM(total_price), 0) AS total_sales, " +
			"COUNT(id) AS total_orders, " +
			"COALESCE(SUM(discount_amount), 0) AS total_discount",
	).Scan(&row).Error
	if err != nil {
		return repo.FinancialSummary{}, err
	}

	return repo.FinancialSummary{
		TotalSales:    row.TotalSales,
		TotalOrders:   row.TotalOrders,
		TotalDiscount: row.TotalDiscount,
	}, nil
}

// クーポンごとの利用回数と割引総額
func (r *OrderGormRepository) CouponPerformance(ctx context.Context) ([]repo.CouponPerformance, error) {
	var rows []struct {
		Code          string
		TimesUsed     int64
		TotalDiscount decimal.Decimal
	}

	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("coupon_code_used AS code, COUNT(id) AS times_used, COALESCE(SUM(discount_amount), 0) AS total_discount").
		Where("coupon_code_used <> ''").
		Group("coupon_code_used").
		Order("times_used desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]repo.CouponPerformance, 0, len(rows))
	for _, row := range rows {
		out = append(out, repo.CouponPerformance{
			Code:          row.Code,
			TimesUsed:     row.TimesUsed,
			TotalDiscount: row.TotalDiscount,
		})
	}
	return out, nil
}
