package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ReviewUsecase struct {
	reviewRepo  repo.ReviewRepository
	productRepo repo.ProductRepository
}

func NewReviewUsecase(reviewRepo repo.ReviewRepository, productRepo repo.ProductRepository) *ReviewUsecase {
	return &ReviewUsecase{reviewRepo: reviewRepo, productRepo: productRepo}
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (u *ReviewUsecase) ListByProduct(ctx context.Context, productID int64, skip, limit int) ([]model.ProductReview, error) {
	if skip < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "skip must be >= 0")
	}
	if limit < 1 || limit > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
	}
	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, err
	}
	return u.reviewRepo.ListByProductID(ctx, productID, skip, limit)
}

// Create は1ユーザー1商品につき1件だけ。
func (u *ReviewUsecase) Create(ctx context.Context, userID, productID int64, in ReviewInput) (*model.ProductReview, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	if len(in.Comment) > 2000 {
		return nil, NewHTTPError(http.StatusBadRequest, "comment too long")
	}
	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, err
	}

	created, err := u.reviewRepo.Create(ctx, model.ProductReview{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewHTTPError(http.StatusConflict, "you have already reviewed this product")
		}
		return nil, err
	}
	return &created, nil
}

// Delete は投稿者本人か管理者のみ。
func (u *ReviewUsecase) Delete(ctx context.Context, userID int64, role model.Role, reviewID int64) error {
	review, err := u.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "review not found")
		}
		return err
	}
	if review.UserID != userID && role != model.RoleAdmin {
		return NewHTTPError(http.StatusForbidden, "not allowed to delete this review")
	}
	if err := u.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "review not found")
		}
		return err
	}
	return nil
}
