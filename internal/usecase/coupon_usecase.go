package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type CouponUsecase struct {
	couponRepo repo.CouponRepository
}

func NewCouponUsecase(couponRepo repo.CouponRepository) *CouponUsecase {
	return &CouponUsecase{couponRepo: couponRepo}
}

type CouponInput struct {
	Code            string     `json:"code"`
	DiscountPercent float64    `json:"discount_percent"`
	ExpiresAt       *time.Time `json:"expires_at"`
	IsActive        *bool      `json:"is_active"`
}

func validateCouponInput(in CouponInput) error {
	if strings.TrimSpace(in.Code) == "" {
		return NewHTTPError(http.StatusBadRequest, "code is required")
	}
	if in.DiscountPercent <= 0 || in.DiscountPercent > 100 {
		return NewHTTPError(http.StatusBadRequest, "discount_percent must be between 0 and 100")
	}
	return nil
}

func (u *CouponUsecase) List(ctx context.Context, skip, limit int) ([]model.Coupon, error) {
	if skip < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "skip must be >= 0")
	}
	if limit < 1 || limit > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
	}
	return u.couponRepo.List(ctx, skip, limit)
}

func (u *CouponUsecase) Get(ctx context.Context, id int64) (*model.Coupon, error) {
	c, err := u.couponRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "coupon not found")
		}
		return nil, err
	}
	return &c, nil
}

func (u *CouponUsecase) Create(ctx context.Context, in CouponInput) (*model.Coupon, error) {
	if err := validateCouponInput(in); err != nil {
		return nil, err
	}
	c := model.Coupon{
		Code:            strings.ToUpper(strings.TrimSpace(in.Code)),
		DiscountPercent: in.DiscountPercent,
		ExpiresAt:       in.ExpiresAt,
		IsActive:        true,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	created, err := u.couponRepo.Create(ctx, c)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewHTTPError(http.StatusConflict, "coupon code already exists")
		}
		return nil, err
	}
	return &created, nil
}

func (u *CouponUsecase) Update(ctx context.Context, id int64, in CouponInput) (*model.Coupon, error) {
	if err := validateCouponInput(in); err != nil {
		return nil, err
	}
	c, err := u.couponRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "coupon not found")
		}
		return nil, err
	}
	c.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	c.DiscountPercent = in.DiscountPercent
	c.ExpiresAt = in.ExpiresAt
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := u.couponRepo.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewHTTPError(http.StatusConflict, "coupon code already exists")
		}
		return nil, err
	}
	return &c, nil
}

// Delete はこのクーポンを適用中のカートからも外す。
func (u *CouponUsecase) Delete(ctx context.Context, id int64) error {
	if err := u.couponRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "coupon not found")
		}
		return err
	}
	return nil
}
