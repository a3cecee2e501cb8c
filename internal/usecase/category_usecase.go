package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
}

func NewCategoryUsecase(categoryRepo repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo}
}

func (u *CategoryUsecase) List(ctx context.Context, skip, limit int) ([]model.Category, error) {
	if skip < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "skip must be >= 0")
	}
	if limit < 1 || limit > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
	}
	return u.categoryRepo.List(ctx, skip, limit)
}

func (u *CategoryUsecase) Get(ctx context.Context, id int64) (*model.Category, error) {
	c, err := u.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "category not found")
		}
		return nil, err
	}
	return &c, nil
}

type CategoryInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

func validateCategoryInput(in CategoryInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if !slugPattern.MatchString(in.Slug) {
		return NewHTTPError(http.StatusBadRequest, "slug must be lowercase letters, digits and hyphens")
	}
	return nil
}

func (u *CategoryUsecase) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	if err := validateCategoryInput(in); err != nil {
		return nil, err
	}
	created, err := u.categoryRepo.Create(ctx, model.Category{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Slug:        in.Slug,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewHTTPError(http.StatusConflict, "slug already exists")
		}
		return nil, err
	}
	return &created, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, id int64, in CategoryInput) (*model.Category, error) {
	if err := validateCategoryInput(in); err != nil {
		return nil, err
	}
	c, err := u.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "category not found")
		}
		return nil, err
	}
	c.Title = strings.TrimSpace(in.Title)
	c.Description = in.Description
	c.Slug = in.Slug
	if err := u.categoryRepo.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewHTTPError(http.StatusConflict, "slug already exists")
		}
		return nil, err
	}
	return &c, nil
}

// Delete はカテゴリ配下の商品ごと削除する。
func (u *CategoryUsecase) Delete(ctx context.Context, id int64) error {
	if err := u.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "category not found")
		}
		return err
	}
	return nil
}
