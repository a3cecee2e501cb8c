package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /admin/products のHTTP。画像があるのでmultipart/form-dataで受ける。
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.ActiveUserGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
}

// multipartのフォーム値をusecaseの入力へ
func bindProductForm(c echo.Context) (usecase.AdminProductInput, error) {
	var in usecase.AdminProductInput

	in.SKU = c.FormValue("sku")
	in.Name = c.FormValue("name")
	in.Description = c.FormValue("description")

	price, err := decimal.NewFromString(c.FormValue("price"))
	if err != nil {
		return in, usecase.NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	in.Price = price

	stock, err := strconv.ParseInt(c.FormValue("stock"), 10, 64)
	if err != nil {
		return in, usecase.NewHTTPError(http.StatusBadRequest, "invalid stock")
	}
	in.Stock = stock

	categoryID, err := strconv.ParseInt(c.FormValue("category_id"), 10, 64)
	if err != nil {
		return in, usecase.NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}
	in.CategoryID = categoryID

	// 重量と寸法は任意。未指定は0。
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"weight_kg", &in.WeightKg},
		{"height_cm", &in.HeightCm},
		{"width_cm", &in.WidthCm},
		{"length_cm", &in.LengthCm},
	} {
		v := c.FormValue(f.name)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil || x < 0 {
			return in, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+f.name)
		}
		*f.dst = x
	}

	return in, nil
}

// imageフィールドを開く。無いときはContent=nilで返す。
func openImageUpload(c echo.Context) (usecase.ImageUpload, func(), error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return usecase.ImageUpload{}, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return usecase.ImageUpload{}, func() {}, err
	}
	return usecase.ImageUpload{Filename: fh.Filename, Content: f}, func() { f.Close() }, nil
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in, err := bindProductForm(c)
	if err != nil {
		return writeError(c, err)
	}

	image, closeImage, err := openImageUpload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image"})
	}
	defer closeImage()

	created, err := h.uc.AdminCreate(c.Request().Context(), adminID, in, image)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	in, err := bindProductForm(c)
	if err != nil {
		return writeError(c, err)
	}

	image, closeImage, err := openImageUpload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image"})
	}
	defer closeImage()

	updated, err := h.uc.AdminUpdate(c.Request().Context(), adminID, id, in, image)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.AdminDelete(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "product deleted"})
}
