package unit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"app/internal/domain/model"
	"app/internal/infra/cache"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ProdProductRepoMock struct{ mock.Mock }

func (m *ProdProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProdProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProdProductRepoMock) FindBySKU(ctx context.Context, sku string) (model.Product, error) {
	args := m.Called(ctx, sku)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProdProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProdProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProdProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProdProductRepoMock) DecreaseStockIfEnough(ctx context.Context, productID, qty int64) (bool, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProdProductRepoMock) IncreaseStock(ctx context.Context, productID, qty int64) error {
	panic("not used in ProductUsecase tests")
}

func (m *ProdProductRepoMock) Count(ctx context.Context) (int64, error) {
	panic("not used in ProductUsecase tests")
}

type ProdCategoryRepoMock struct{ mock.Mock }

func (m *ProdCategoryRepoMock) List(ctx context.Context, skip, limit int) ([]model.Category, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProdCategoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *ProdCategoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProdCategoryRepoMock) Update(ctx context.Context, c model.Category) error {
	panic("not used in ProductUsecase tests")
}

func (m *ProdCategoryRepoMock) Delete(ctx context.Context, id int64) error {
	panic("not used in ProductUsecase tests")
}

type ProdImageStoreMock struct{ mock.Mock }

func (m *ProdImageStoreMock) Upload(ctx context.Context, filename string, content io.Reader) (string, string, error) {
	args := m.Called(ctx, filename, content)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *ProdImageStoreMock) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

type ProdCacheMock struct{ mock.Mock }

func (m *ProdCacheMock) Get(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProdCacheMock) Set(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProdCacheMock) Delete(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

type productFixture struct {
	uc       *usecase.ProductUsecase
	products *ProdProductRepoMock
	cats     *ProdCategoryRepoMock
	audit    *AOAuditRepoMock
	images   *ProdImageStoreMock
}

func newProductFixture() productFixture {
	f := productFixture{
		products: new(ProdProductRepoMock),
		cats:     new(ProdCategoryRepoMock),
		audit:    new(AOAuditRepoMock),
		images:   new(ProdImageStoreMock),
	}
	f.uc = usecase.NewProductUsecase(f.products, f.cats, f.audit, f.images, cache.NopProductCache{}, nopLogger{})
	return f
}

func validProductInput() usecase.AdminProductInput {
	return usecase.AdminProductInput{
		SKU:        "BEANS-001",
		Name:       "Coffee Beans",
		Price:      price("10.50"),
		Stock:      5,
		CategoryID: 2,
		WeightKg:   0.5,
	}
}

func imageUpload() usecase.ImageUpload {
	return usecase.ImageUpload{Filename: "beans.jpg", Content: strings.NewReader("jpegdata")}
}

// =====================
// 公開一覧・詳細
// =====================

func TestProductUsecase_List_InvalidSkip(t *testing.T) {
	f := newProductFixture()

	_, err := f.uc.List(context.Background(), usecase.ListProductsInput{Skip: -1, Limit: 20})
	assertHTTPError(t, err, http.StatusBadRequest, "skip")
}

func TestProductUsecase_List_InvalidLimit(t *testing.T) {
	f := newProductFixture()

	_, err := f.uc.List(context.Background(), usecase.ListProductsInput{Skip: 0, Limit: 101})
	assertHTTPError(t, err, http.StatusBadRequest, "limit")
}

func TestProductUsecase_List_Success(t *testing.T) {
	f := newProductFixture()

	q := repo.ProductListQuery{Skip: 0, Limit: 20, Q: "coffee"}
	f.products.On("List", mock.Anything, q).
		Return([]model.Product{{ID: 1, Name: "Coffee Beans"}}, int64(1), nil)

	out, err := f.uc.List(context.Background(), usecase.ListProductsInput{Skip: 0, Limit: 20, Q: "coffee"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, len(out.Items))

	f.products.AssertExpectations(t)
}

func TestProductUsecase_GetDetail_NotFound(t *testing.T) {
	f := newProductFixture()

	f.products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := f.uc.GetDetail(context.Background(), 99)
	assertHTTPError(t, err, http.StatusNotFound, "product not found")
}

func TestProductUsecase_GetDetail_Success(t *testing.T) {
	f := newProductFixture()

	f.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Coffee Beans"}, nil)

	p, err := f.uc.GetDetail(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

// =====================
// 管理: 作成
// =====================

func TestProductUsecase_AdminCreate_ImageRequired(t *testing.T) {
	f := newProductFixture()

	f.cats.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2}, nil)

	_, err := f.uc.AdminCreate(context.Background(), 100, validProductInput(), usecase.ImageUpload{})
	assertHTTPError(t, err, http.StatusBadRequest, "image")

	f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductUsecase_AdminCreate_CategoryNotFound(t *testing.T) {
	f := newProductFixture()

	f.cats.On("FindByID", mock.Anything, int64(2)).Return(model.Category{}, repo.ErrNotFound)

	_, err := f.uc.AdminCreate(context.Background(), 100, validProductInput(), imageUpload())
	assertHTTPError(t, err, http.StatusNotFound, "category not found")
}

// SKU重複で保存に失敗したらアップロード済み画像を消す
func TestProductUsecase_AdminCreate_DuplicateSKU_CleansUpImage(t *testing.T) {
	f := newProductFixture()

	f.cats.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2}, nil)
	f.images.On("Upload", mock.Anything, "beans.jpg", mock.Anything).
		Return("https://assets.example/beans.jpg", "img-123", nil)
	f.products.On("Create", mock.Anything, mock.Anything).Return(model.Product{}, repo.ErrDuplicate)
	f.images.On("Delete", mock.Anything, "img-123").Return(nil)

	_, err := f.uc.AdminCreate(context.Background(), 100, validProductInput(), imageUpload())
	assertHTTPError(t, err, http.StatusConflict, "sku already exists")

	f.images.AssertExpectations(t)
}

func TestProductUsecase_AdminCreate_Success(t *testing.T) {
	f := newProductFixture()

	f.cats.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2}, nil)
	f.images.On("Upload", mock.Anything, "beans.jpg", mock.Anything).
		Return("https://assets.example/beans.jpg", "img-123", nil)
	f.products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.SKU == "BEANS-001" && p.ImageURL == "https://assets.example/beans.jpg" && p.ImagePublicID == "img-123"
	})).Return(model.Product{ID: 1, SKU: "BEANS-001"}, nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(log model.AuditLog) bool {
		return log.Action == model.AuditActionCreateProduct && log.ActorUserID == 100 &&
			log.BeforeJSON == "" && strings.Contains(log.AfterJSON, "BEANS-001")
	})).Return(nil)

	p, err := f.uc.AdminCreate(context.Background(), 100, validProductInput(), imageUpload())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	f.products.AssertExpectations(t)
	f.audit.AssertExpectations(t)
	f.images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// 管理系の書き込みは作成でもキャッシュを消す
func TestProductUsecase_AdminCreate_InvalidatesCache(t *testing.T) {
	products := new(ProdProductRepoMock)
	cats := new(ProdCategoryRepoMock)
	audit := new(AOAuditRepoMock)
	images := new(ProdImageStoreMock)
	cacheMock := new(ProdCacheMock)
	uc := usecase.NewProductUsecase(products, cats, audit, images, cacheMock, nopLogger{})

	cats.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2}, nil)
	images.On("Upload", mock.Anything, "beans.jpg", mock.Anything).
		Return("https://assets.example/beans.jpg", "img-123", nil)
	products.On("Create", mock.Anything, mock.Anything).Return(model.Product{ID: 1, SKU: "BEANS-001"}, nil)
	cacheMock.On("Delete", mock.Anything, int64(1)).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.AdminCreate(context.Background(), 100, validProductInput(), imageUpload())
	assert.NoError(t, err)

	cacheMock.AssertExpectations(t)
}

// =====================
// 管理: 更新・削除
// =====================

// 画像差し替え成功後に旧画像を消す。削除失敗でも更新は成功扱い。
func TestProductUsecase_AdminUpdate_NewImage_OldDeleteFailureIsIgnored(t *testing.T) {
	f := newProductFixture()

	f.cats.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2}, nil)
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, SKU: "BEANS-001", ImagePublicID: "img-old"}, nil)
	f.images.On("Upload", mock.Anything, "beans.jpg", mock.Anything).
		Return("https://assets.example/new.jpg", "img-new", nil)
	f.products.On("Update", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.ImagePublicID == "img-new"
	})).Return(nil)
	f.images.On("Delete", mock.Anything, "img-old").Return(errors.New("asset host down"))
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	p, err := f.uc.AdminUpdate(context.Background(), 100, 1, validProductInput(), imageUpload())
	assert.NoError(t, err)
	assert.Equal(t, "img-new", p.ImagePublicID)

	f.images.AssertExpectations(t)
}

func TestProductUsecase_AdminUpdate_NotFound(t *testing.T) {
	f := newProductFixture()

	f.cats.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2}, nil)
	f.products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := f.uc.AdminUpdate(context.Background(), 100, 99, validProductInput(), usecase.ImageUpload{})
	assertHTTPError(t, err, http.StatusNotFound, "product not found")
}

// 削除では記録画像もベストエフォートで消す
func TestProductUsecase_AdminDelete_ImageDeleteFailureIsIgnored(t *testing.T) {
	f := newProductFixture()

	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, ImagePublicID: "img-123"}, nil)
	f.products.On("Delete", mock.Anything, int64(1)).Return(nil)
	f.images.On("Delete", mock.Anything, "img-123").Return(errors.New("asset host down"))
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(log model.AuditLog) bool {
		return log.Action == model.AuditActionDeleteProduct
	})).Return(nil)

	err := f.uc.AdminDelete(context.Background(), 100, 1)
	assert.NoError(t, err)

	f.images.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}
