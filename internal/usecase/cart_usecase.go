package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	couponRepo   repo.CouponRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	couponRepo repo.CouponRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		couponRepo:   couponRepo,
	}
}

type CartItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartOutput struct {
	Items          []CartItemOutput `json:"items"`
	CouponCode     string           `json:"coupon_code,omitempty"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	FinalPrice     decimal.Decimal  `json:"final_price"`
}

type ClearCartOutput struct {
	AlreadyEmpty bool       `json:"already_empty"`
	Cart         CartOutput `json:"cart"`
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (*CartOutput, error) {
	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.buildOutput(ctx, cart.ID, cart.CouponID)
}

func (u *CartUsecase) AddItem(ctx context.Context, userID, productID, quantity int64) (*CartOutput, error) {
	if quantity < 1 {
		return nil, NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}

	product, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, err
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 既存明細は加算になるので、合算後の数量で在庫を見る。
	requested := quantity
	if existing, ferr := u.cartItemRepo.FindByCartAndProduct(ctx, cart.ID, productID); ferr == nil {
		requested += existing.Quantity
	} else if !errors.Is(ferr, repo.ErrNotFound) {
		return nil, ferr
	}
	if requested > product.Stock {
		return nil, NewHTTPError(http.StatusBadRequest, "insufficient stock for '"+product.Name+"'")
	}

	if err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return u.buildOutput(ctx, cart.ID, cart.CouponID)
}

// UpdateItem は数量を絶対値で更新する。1 未満は明細の削除として扱う。
func (u *CartUsecase) UpdateItem(ctx context.Context, userID, productID, quantity int64) (*CartOutput, error) {
	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "cart not found")
		}
		return nil, err
	}

	if quantity < 1 {
		if err := u.cartItemRepo.DeleteByCartAndProduct(ctx, cart.ID, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, NewHTTPError(http.StatusNotFound, "item not in cart")
			}
			return nil, err
		}
		return u.buildOutput(ctx, cart.ID, cart.CouponID)
	}

	if _, err := u.cartItemRepo.FindByCartAndProduct(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "item not in cart")
		}
		return nil, err
	}

	product, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, err
	}
	if quantity > product.Stock {
		return nil, NewHTTPError(http.StatusBadRequest, "insufficient stock for '"+product.Name+"'")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return u.buildOutput(ctx, cart.ID, cart.CouponID)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID, productID int64) (*CartOutput, error) {
	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "cart not found")
		}
		return nil, err
	}
	if err := u.cartItemRepo.DeleteByCartAndProduct(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "item not in cart")
		}
		return nil, err
	}
	return u.buildOutput(ctx, cart.ID, cart.CouponID)
}

// Clear は冪等。空のカートに対しても成功し、already_empty で区別できる。
func (u *CartUsecase) Clear(ctx context.Context, userID int64) (*ClearCartOutput, error) {
	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	alreadyEmpty := len(items) == 0
	if !alreadyEmpty || cart.CouponID != nil {
		if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
			return nil, err
		}
	}
	out, err := u.buildOutput(ctx, cart.ID, nil)
	if err != nil {
		return nil, err
	}
	return &ClearCartOutput{AlreadyEmpty: alreadyEmpty, Cart: *out}, nil
}

func (u *CartUsecase) ApplyCoupon(ctx context.Context, userID int64, code string) (*CartOutput, error) {
	//保存時と同じ正規化をかけてから照合する
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "coupon code is required")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	coupon, err := u.couponRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "invalid or expired coupon")
		}
		return nil, err
	}
	if !coupon.IsValidAt(time.Now()) {
		return nil, NewHTTPError(http.StatusNotFound, "invalid or expired coupon")
	}

	if err := u.cartRepo.SetCoupon(ctx, cart.ID, &coupon.ID); err != nil {
		return nil, err
	}
	return u.buildOutput(ctx, cart.ID, &coupon.ID)
}

func (u *CartUsecase) RemoveCoupon(ctx context.Context, userID int64) (*CartOutput, error) {
	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.CouponID != nil {
		if err := u.cartRepo.SetCoupon(ctx, cart.ID, nil); err != nil {
			return nil, err
		}
	}
	return u.buildOutput(ctx, cart.ID, nil)
}

// percentOf は小計に割引率をかけて円未満 2 桁で丸める。
func percentOf(subtotal decimal.Decimal, percent float64) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100)).Round(2)
}

func (u *CartUsecase) buildOutput(ctx context.Context, cartID int64, couponID *int64) (*CartOutput, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	out := &CartOutput{Items: make([]CartItemOutput, 0, len(items))}
	subtotal := decimal.Zero
	for _, item := range items {
		product, perr := u.productRepo.FindByID(ctx, item.ProductID)
		if perr != nil {
			if errors.Is(perr, repo.ErrNotFound) {
				// 商品が消えた明細は表示しない
				continue
			}
			return nil, perr
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(item.Quantity))
		subtotal = subtotal.Add(lineTotal)
		out.Items = append(out.Items, CartItemOutput{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
	}

	out.Subtotal = subtotal
	out.DiscountAmount = decimal.Zero
	if couponID != nil {
		coupon, cerr := u.couponRepo.FindByID(ctx, *couponID)
		if cerr == nil && coupon.IsValidAt(time.Now()) {
			out.CouponCode = coupon.Code
			out.DiscountAmount = percentOf(subtotal, coupon.DiscountPercent)
		} else if cerr != nil && !errors.Is(cerr, repo.ErrNotFound) {
			return nil, cerr
		}
	}
	out.FinalPrice = subtotal.Sub(out.DiscountAmount)
	return out, nil
}
