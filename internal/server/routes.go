package server

import (
	"app/internal/config"
	"app/internal/handler"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// 全ハンドラをまとめて登録する。
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Category     *handler.CategoryHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	Coupon       *handler.CouponHandler
	Review       *handler.ReviewHandler
	Shipping     *handler.ShippingHandler
	User         *handler.UserHandler
	AdminUser    *handler.AdminUserHandler
	Stats        *handler.StatsHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.Category.RegisterRoutes(e, cfg, userRepo)
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.Coupon.RegisterRoutes(e, cfg, userRepo)
	h.Review.RegisterRoutes(e, cfg, userRepo)
	h.Shipping.RegisterRoutes(e, cfg, userRepo)
	h.User.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e, cfg, userRepo)
	h.Stats.RegisterRoutes(e, cfg, userRepo)
}
