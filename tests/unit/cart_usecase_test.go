package unit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type CartCartRepoMock struct{ mock.Mock }

func (m *CartCartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartCartRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartCartRepoMock) SetCoupon(ctx context.Context, cartID int64, couponID *int64) error {
	args := m.Called(ctx, cartID, couponID)
	return args.Error(0)
}

func (m *CartCartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID, productID, addQty int64) error {
	args := m.Called(ctx, cartID, productID, addQty)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartID, productID, qty int64) error {
	args := m.Called(ctx, cartID, productID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByCartAndProduct(ctx context.Context, cartID, productID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartID, productID)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Error(1)
}

func (m *CartItemRepoMock) DeleteByCartAndProduct(ctx context.Context, cartID, productID int64) error {
	args := m.Called(ctx, cartID, productID)
	return args.Error(0)
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) FindBySKU(ctx context.Context, sku string) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Delete(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) DecreaseStockIfEnough(ctx context.Context, productID, qty int64) (bool, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) IncreaseStock(ctx context.Context, productID, qty int64) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Count(ctx context.Context) (int64, error) {
	panic("not used in CartUsecase tests")
}

type CartCouponRepoMock struct{ mock.Mock }

func (m *CartCouponRepoMock) List(ctx context.Context, skip, limit int) ([]model.Coupon, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartCouponRepoMock) FindByID(ctx context.Context, id int64) (model.Coupon, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *CartCouponRepoMock) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *CartCouponRepoMock) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartCouponRepoMock) Update(ctx context.Context, c model.Coupon) error {
	panic("not used in CartUsecase tests")
}

func (m *CartCouponRepoMock) Delete(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

func newCartUsecase() (*usecase.CartUsecase, *CartCartRepoMock, *CartItemRepoMock, *CartProductRepoMock, *CartCouponRepoMock) {
	cartRepo := new(CartCartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)
	couponRepo := new(CartCouponRepoMock)
	uc := usecase.NewCartUsecase(cartRepo, itemRepo, productRepo, couponRepo)
	return uc, cartRepo, itemRepo, productRepo, couponRepo
}

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =====================
// 追加
// =====================

func TestCartUsecase_AddItem_InvalidQuantity(t *testing.T) {
	uc, _, _, _, _ := newCartUsecase()

	_, err := uc.AddItem(context.Background(), 1, 10, 0)
	assertHTTPError(t, err, http.StatusBadRequest, "quantity")
}

func TestCartUsecase_AddItem_ProductNotFound(t *testing.T) {
	uc, _, _, productRepo, _ := newCartUsecase()

	productRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AddItem(context.Background(), 1, 99, 1)
	assertHTTPError(t, err, http.StatusNotFound, "product not found")
}

// 既存明細と合算して在庫を超えたら400
func TestCartUsecase_AddItem_MergeExceedsStock(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, productRepo, _ := newCartUsecase()

	productRepo.On("FindByID", mock.Anything, int64(10)).
		Return(model.Product{ID: 10, Name: "Beans", Price: price("1000"), Stock: 5}, nil)
	cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 7, UserID: 1}, nil)
	itemRepo.On("FindByCartAndProduct", mock.Anything, int64(7), int64(10)).
		Return(model.CartItem{CartID: 7, ProductID: 10, Quantity: 4}, nil)

	_, err := uc.AddItem(ctx, 1, 10, 2)
	assertHTTPError(t, err, http.StatusBadRequest, "insufficient stock")

	itemRepo.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddItem_MergesQuantity(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, productRepo, _ := newCartUsecase()

	productRepo.On("FindByID", mock.Anything, int64(10)).
		Return(model.Product{ID: 10, Name: "Beans", Price: price("10.50"), Stock: 10}, nil)
	cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 7, UserID: 1}, nil)
	itemRepo.On("FindByCartAndProduct", mock.Anything, int64(7), int64(10)).
		Return(model.CartItem{CartID: 7, ProductID: 10, Quantity: 1}, nil)
	itemRepo.On("UpsertByCartAndProduct", mock.Anything, int64(7), int64(10), int64(1)).Return(nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(7)).
		Return([]model.CartItem{{CartID: 7, ProductID: 10, Quantity: 2}}, nil)

	out, err := uc.AddItem(ctx, 1, 10, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.True(t, out.Subtotal.Equal(price("21.00")), "subtotal=%s", out.Subtotal)

	itemRepo.AssertExpectations(t)
}

// =====================
// 数量変更・削除
// =====================

func TestCartUsecase_UpdateItem_CartNotFound(t *testing.T) {
	uc, cartRepo, _, _, _ := newCartUsecase()

	cartRepo.On("FindByUserID", mock.Anything, int64(1)).Return(model.Cart{}, repo.ErrNotFound)

	_, err := uc.UpdateItem(context.Background(), 1, 10, 2)
	assertHTTPError(t, err, http.StatusNotFound, "cart not found")
}

// 数量0は明細削除として扱う
func TestCartUsecase_UpdateItem_ZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, _, _ := newCartUsecase()

	cartRepo.On("FindByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	itemRepo.On("DeleteByCartAndProduct", mock.Anything, int64(7), int64(10)).Return(nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	out, err := uc.UpdateItem(ctx, 1, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))

	itemRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_UpdateItem_NotInCart(t *testing.T) {
	uc, cartRepo, itemRepo, _, _ := newCartUsecase()

	cartRepo.On("FindByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	itemRepo.On("FindByCartAndProduct", mock.Anything, int64(7), int64(10)).
		Return(model.CartItem{}, repo.ErrNotFound)

	_, err := uc.UpdateItem(context.Background(), 1, 10, 3)
	assertHTTPError(t, err, http.StatusNotFound, "item not in cart")
}

func TestCartUsecase_RemoveItem_NotInCart(t *testing.T) {
	uc, cartRepo, itemRepo, _, _ := newCartUsecase()

	cartRepo.On("FindByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	itemRepo.On("DeleteByCartAndProduct", mock.Anything, int64(7), int64(10)).Return(repo.ErrNotFound)

	_, err := uc.RemoveItem(context.Background(), 1, 10)
	assertHTTPError(t, err, http.StatusNotFound, "item not in cart")
}

// =====================
// クリア（冪等）
// =====================

func TestCartUsecase_Clear_AlreadyEmpty(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, _, _ := newCartUsecase()

	cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	out, err := uc.Clear(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, out.AlreadyEmpty)

	//空のカートは触らない
	cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestCartUsecase_Clear_NonEmpty(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, productRepo, _ := newCartUsecase()

	cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(7)).
		Return([]model.CartItem{{CartID: 7, ProductID: 10, Quantity: 1}}, nil).Once()
	cartRepo.On("Clear", mock.Anything, int64(7)).Return(nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)
	_ = productRepo

	out, err := uc.Clear(ctx, 1)
	assert.NoError(t, err)
	assert.False(t, out.AlreadyEmpty)
	assert.Equal(t, 0, len(out.Cart.Items))

	cartRepo.AssertExpectations(t)
}

// =====================
// クーポン
// =====================

func TestCartUsecase_ApplyCoupon_UnknownCode(t *testing.T) {
	uc, cartRepo, _, _, couponRepo := newCartUsecase()

	cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	couponRepo.On("FindByCode", mock.Anything, "NOPE").Return(model.Coupon{}, repo.ErrNotFound)

	_, err := uc.ApplyCoupon(context.Background(), 1, "NOPE")
	assertHTTPError(t, err, http.StatusNotFound, "invalid or expired")
}

func TestCartUsecase_ApplyCoupon_Expired(t *testing.T) {
	uc, cartRepo, _, _, couponRepo := newCartUsecase()

	expired := time.Now().Add(-time.Hour)
	cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	couponRepo.On("FindByCode", mock.Anything, "OLD10").
		Return(model.Coupon{ID: 3, Code: "OLD10", DiscountPercent: 10, ExpiresAt: &expired, IsActive: true}, nil)

	_, err := uc.ApplyCoupon(context.Background(), 1, "OLD10")
	assertHTTPError(t, err, http.StatusNotFound, "invalid or expired")

	cartRepo.AssertNotCalled(t, "SetCoupon", mock.Anything, mock.Anything, mock.Anything)
}

// 入力コードは保存時と同じ正規化（大文字化）で照合する
func TestCartUsecase_ApplyCoupon_NormalizesCode(t *testing.T) {
	uc, cartRepo, itemRepo, _, couponRepo := newCartUsecase()

	couponID := int64(3)
	cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	couponRepo.On("FindByCode", mock.Anything, "SAVE10").
		Return(model.Coupon{ID: couponID, Code: "SAVE10", DiscountPercent: 10, IsActive: true}, nil)
	couponRepo.On("FindByID", mock.Anything, couponID).
		Return(model.Coupon{ID: couponID, Code: "SAVE10", DiscountPercent: 10, IsActive: true}, nil)
	cartRepo.On("SetCoupon", mock.Anything, int64(7), &couponID).Return(nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	out, err := uc.ApplyCoupon(context.Background(), 1, "  save10 ")
	assert.NoError(t, err)
	assert.Equal(t, "SAVE10", out.CouponCode)

	couponRepo.AssertExpectations(t)
}

// 10.50×2 + 5.00 = 26.00、10%割引で2.60引きの23.40
func TestCartUsecase_ApplyCoupon_DiscountMath(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, productRepo, couponRepo := newCartUsecase()

	couponID := int64(3)
	cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	couponRepo.On("FindByCode", mock.Anything, "SAVE10").
		Return(model.Coupon{ID: couponID, Code: "SAVE10", DiscountPercent: 10, IsActive: true}, nil)
	couponRepo.On("FindByID", mock.Anything, couponID).
		Return(model.Coupon{ID: couponID, Code: "SAVE10", DiscountPercent: 10, IsActive: true}, nil)
	cartRepo.On("SetCoupon", mock.Anything, int64(7), &couponID).Return(nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{
		{CartID: 7, ProductID: 10, Quantity: 2},
		{CartID: 7, ProductID: 11, Quantity: 1},
	}, nil)
	productRepo.On("FindByID", mock.Anything, int64(10)).
		Return(model.Product{ID: 10, Name: "Beans", Price: price("10.50"), Stock: 10}, nil)
	productRepo.On("FindByID", mock.Anything, int64(11)).
		Return(model.Product{ID: 11, Name: "Filter", Price: price("5.00"), Stock: 10}, nil)

	out, err := uc.ApplyCoupon(ctx, 1, "SAVE10")
	assert.NoError(t, err)
	assert.Equal(t, "SAVE10", out.CouponCode)
	assert.True(t, out.Subtotal.Equal(price("26.00")), "subtotal=%s", out.Subtotal)
	assert.True(t, out.DiscountAmount.Equal(price("2.60")), "discount=%s", out.DiscountAmount)
	assert.True(t, out.FinalPrice.Equal(price("23.40")), "final=%s", out.FinalPrice)

	cartRepo.AssertExpectations(t)
}

func TestCartUsecase_RemoveCoupon_Idempotent(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, _, _ := newCartUsecase()

	cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	_, err := uc.RemoveCoupon(ctx, 1)
	assert.NoError(t, err)

	//クーポン未適用なら何も外さない
	cartRepo.AssertNotCalled(t, "SetCoupon", mock.Anything, mock.Anything, mock.Anything)
}
