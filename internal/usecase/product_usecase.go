package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	"app/internal/domain/model"
	"app/internal/infra/cache"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// ImageStore は商品画像の外部ストレージ。
type ImageStore interface {
	Upload(ctx context.Context, filename string, content io.Reader) (url string, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}

// WarnLogger はベストエフォート処理の失敗を記録する。echo.Logger を満たす。
type WarnLogger interface {
	Warnf(format string, args ...interface{})
}

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	auditRepo    repo.AuditLogRepository
	images       ImageStore
	cache        cache.ProductCache
	logger       WarnLogger
	sfg          singleflight.Group
}

func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	auditRepo repo.AuditLogRepository,
	images ImageStore,
	productCache cache.ProductCache,
	logger WarnLogger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
		images:       images,
		cache:        productCache,
		logger:       logger,
	}
}

type ListProductsInput struct {
	Skip       int
	Limit      int
	Q          string
	CategoryID *int64
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Skip  int             `json:"skip"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (*ProductListOutput, error) {
	if in.Skip < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "skip must be >= 0")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
	}
	if len(in.Q) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "search query too long")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Skip:       in.Skip,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
	})
	if err != nil {
		return nil, err
	}
	return &ProductListOutput{Items: items, Total: total, Skip: in.Skip, Limit: in.Limit}, nil
}

// GetDetail はキャッシュ優先で 1 件取得する。同一 ID の同時リクエストは singleflight でまとめる。
func (u *ProductUsecase) GetDetail(ctx context.Context, id int64) (*model.Product, error) {
	key := fmt.Sprintf("product:%d", id)
	v, err, _ := u.sfg.Do(key, func() (interface{}, error) {
		if p, cerr := u.cache.Get(ctx, id); cerr == nil {
			return p, nil
		} else if !errors.Is(cerr, cache.ErrCacheMiss) {
			u.logger.Warnf("product cache get failed: %v", cerr)
		}

		p, ferr := u.productRepo.FindByID(ctx, id)
		if ferr != nil {
			return model.Product{}, ferr
		}
		if serr := u.cache.Set(ctx, p); serr != nil {
			u.logger.Warnf("product cache set failed: %v", serr)
		}
		return p, nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, err
	}
	p := v.(model.Product)
	return &p, nil
}

type AdminProductInput struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	CategoryID  int64
	WeightKg    float64
	HeightCm    float64
	WidthCm     float64
	LengthCm    float64
}

// ImageUpload は multipart で受け取った画像ファイル。Content が nil なら画像なし。
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

func (u *ProductUsecase) validateInput(ctx context.Context, in AdminProductInput) error {
	if strings.TrimSpace(in.SKU) == "" {
		return NewHTTPError(http.StatusBadRequest, "sku is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if in.Price.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if _, err := u.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "category not found")
		}
		return err
	}
	return nil
}

func (u *ProductUsecase) AdminCreate(ctx context.Context, actorID int64, in AdminProductInput, image ImageUpload) (*model.Product, error) {
	if err := u.validateInput(ctx, in); err != nil {
		return nil, err
	}
	if image.Content == nil {
		return nil, NewHTTPError(http.StatusBadRequest, "image file is required")
	}

	// 先にアップロードし、DB 保存に失敗したら孤児画像を消す。
	url, publicID, err := u.images.Upload(ctx, image.Filename, image.Content)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadGateway, "image upload failed")
	}

	created, err := u.productRepo.Create(ctx, model.Product{
		SKU:           strings.TrimSpace(in.SKU),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		Stock:         in.Stock,
		CategoryID:    in.CategoryID,
		ImageURL:      url,
		ImagePublicID: publicID,
		WeightKg:      in.WeightKg,
		HeightCm:      in.HeightCm,
		WidthCm:       in.WidthCm,
		LengthCm:      in.LengthCm,
	})
	if err != nil {
		u.deleteImageBestEffort(ctx, publicID)
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewHTTPError(http.StatusConflict, "sku already exists")
		}
		return nil, err
	}

	u.invalidateCache(ctx, created.ID)
	u.audit(ctx, actorID, model.AuditActionCreateProduct, created.ID, nil, &created)
	return &created, nil
}

func (u *ProductUsecase) AdminUpdate(ctx context.Context, actorID int64, id int64, in AdminProductInput, image ImageUpload) (*model.Product, error) {
	if err := u.validateInput(ctx, in); err != nil {
		return nil, err
	}

	before, err := u.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, err
	}

	next := before
	next.SKU = strings.TrimSpace(in.SKU)
	next.Name = strings.TrimSpace(in.Name)
	next.Description = in.Description
	next.Price = in.Price
	next.Stock = in.Stock
	next.CategoryID = in.CategoryID
	next.WeightKg = in.WeightKg
	next.HeightCm = in.HeightCm
	next.WidthCm = in.WidthCm
	next.LengthCm = in.LengthCm

	oldPublicID := ""
	if image.Content != nil {
		url, publicID, uerr := u.images.Upload(ctx, image.Filename, image.Content)
		if uerr != nil {
			return nil, NewHTTPError(http.StatusBadGateway, "image upload failed")
		}
		oldPublicID = before.ImagePublicID
		next.ImageURL = url
		next.ImagePublicID = publicID
	}

	if err := u.productRepo.Update(ctx, next); err != nil {
		if image.Content != nil {
			u.deleteImageBestEffort(ctx, next.ImagePublicID)
		}
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewHTTPError(http.StatusConflict, "sku already exists")
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, err
	}

	// 旧画像の削除は失敗しても更新自体は成功扱い。
	if oldPublicID != "" {
		u.deleteImageBestEffort(ctx, oldPublicID)
	}
	u.invalidateCache(ctx, id)
	u.audit(ctx, actorID, model.AuditActionUpdateProduct, id, &before, &next)
	return &next, nil
}

func (u *ProductUsecase) AdminDelete(ctx context.Context, actorID int64, id int64) error {
	before, err := u.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		return err
	}

	if err := u.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		return err
	}

	u.deleteImageBestEffort(ctx, before.ImagePublicID)
	u.invalidateCache(ctx, id)
	u.audit(ctx, actorID, model.AuditActionDeleteProduct, id, &before, nil)
	return nil
}

func (u *ProductUsecase) deleteImageBestEffort(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := u.images.Delete(ctx, publicID); err != nil {
		u.logger.Warnf("image delete failed (public_id=%s): %v", publicID, err)
	}
}

func (u *ProductUsecase) invalidateCache(ctx context.Context, id int64) {
	if err := u.cache.Delete(ctx, id); err != nil {
		u.logger.Warnf("product cache delete failed (id=%d): %v", id, err)
	}
}

func (u *ProductUsecase) audit(ctx context.Context, actorID int64, action model.AuditAction, resourceID int64, before, after *model.Product) {
	entry := model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   resourceID,
	}
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			entry.BeforeJSON = string(b)
		}
	}
	if after != nil {
		if a, err := json.Marshal(after); err == nil {
			entry.AfterJSON = string(a)
		}
	}
	if err := u.auditRepo.Create(ctx, entry); err != nil {
		u.logger.Warnf("audit log write failed: %v", err)
	}
}
