package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	txManager     repo.TransactionManager
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
}

func NewOrderUsecase(
	txManager repo.TransactionManager,
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
) *OrderUsecase {
	return &OrderUsecase{
		txManager:     txManager,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
	}
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	Status         model.OrderStatus `json:"status"`
	TotalPrice     decimal.Decimal   `json:"total_price"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	CouponCodeUsed string            `json:"coupon_code_used,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []model.OrderItem `json:"items"`
}

// Checkout はカートを注文に変換する。在庫減算・注文作成・カート空けを
// 1 トランザクションで行い、途中で失敗したら全部戻す。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64) (*OrderOutput, error) {
	var orderID int64

	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "cart is empty")
			}
			return err
		}
		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		// チェックアウト時点でクーポンを再検証する
		couponCode := ""
		discountPercent := 0.0
		if cart.CouponID != nil {
			coupon, cerr := r.Coupons().FindByID(ctx, *cart.CouponID)
			if cerr != nil {
				if errors.Is(cerr, repo.ErrNotFound) {
					return NewHTTPError(http.StatusBadRequest, "coupon is no longer valid")
				}
				return cerr
			}
			if !coupon.IsValidAt(time.Now()) {
				return NewHTTPError(http.StatusBadRequest, "coupon is no longer valid")
			}
			couponCode = coupon.Code
			discountPercent = coupon.DiscountPercent
		}

		subtotal := decimal.Zero
		orderItems := make([]model.OrderItem, 0, len(items))
		for _, item := range items {
			product, perr := r.Products().FindByID(ctx, item.ProductID)
			if perr != nil {
				if errors.Is(perr, repo.ErrNotFound) {
					return NewHTTPError(http.StatusBadRequest, "a product in the cart no longer exists")
				}
				return perr
			}

			ok, derr := r.Products().DecreaseStockIfEnough(ctx, item.ProductID, item.Quantity)
			if derr != nil {
				return derr
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "insufficient stock for '"+product.Name+"'")
			}

			productID := item.ProductID
			subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(item.Quantity)))
			orderItems = append(orderItems, model.OrderItem{
				ProductID:       &productID,
				ProductName:     product.Name,
				PriceAtPurchase: product.Price,
				Quantity:        item.Quantity,
			})
		}

		discount := decimal.Zero
		if discountPercent > 0 {
			discount = percentOf(subtotal, discountPercent)
		}

		orderID, err = r.Orders().Create(ctx, model.Order{
			UserID:         userID,
			Status:         model.OrderStatusPendingPayment,
			TotalPrice:     subtotal.Sub(discount),
			DiscountAmount: discount,
			CouponCodeUsed: couponCode,
		})
		if err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return err
		}
		return r.Carts().Clear(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	return u.getOutput(ctx, orderID)
}

func (u *OrderUsecase) ListMine(ctx context.Context, userID int64) ([]OrderOutput, error) {
	orders, err := u.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, ierr := u.orderItemRepo.ListByOrderID(ctx, o.ID)
		if ierr != nil {
			return nil, ierr
		}
		out = append(out, toOrderOutput(o, items))
	}
	return out, nil
}

// Get は本人か管理者だけが見られる。
func (u *OrderUsecase) Get(ctx context.Context, userID int64, role model.Role, orderID int64) (*OrderOutput, error) {
	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "order not found")
		}
		return nil, err
	}
	if order.UserID != userID && role != model.RoleAdmin {
		return nil, NewHTTPError(http.StatusForbidden, "not allowed to view this order")
	}
	items, err := u.orderItemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := toOrderOutput(order, items)
	return &out, nil
}

func (u *OrderUsecase) getOutput(ctx context.Context, orderID int64) (*OrderOutput, error) {
	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := u.orderItemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := toOrderOutput(order, items)
	return &out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	return OrderOutput{
		ID:             o.ID,
		Status:         o.Status,
		TotalPrice:     o.TotalPrice,
		DiscountAmount: o.DiscountAmount,
		CouponCodeUsed: o.CouponCodeUsed,
		CreatedAt:      o.CreatedAt,
		Items:          items,
	}
}
