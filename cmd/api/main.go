package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/asset"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	//.envは任意（本番はenvだけで動く）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Coupon{},
		&model.Order{},
		&model.OrderItem{},
		&model.ProductReview{},
		&model.PasswordResetToken{},
		&model.AuditLog{},
	); err != nil {
		panic(err)
	}

	//echo本体（loggerをusecaseにも渡す）
	e := server.New(cfg)

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	resetRepo := infraRepo.NewPasswordResetGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//アセットホスト（circuit breaker付き）
	assetClient := asset.NewBreakerClient(
		asset.NewClient(cfg.AssetBaseURL, cfg.AssetAPIKey, 15*time.Second),
	)

	//商品キャッシュ。REDIS_ADDRが無ければ素通し。
	var productCache cache.ProductCache = cache.NopProductCache{}
	if cfg.RedisAddr != "" {
		productCache = cache.NewRedisProductCache(redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		}))
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, auditRepo, assetClient, productCache, e.Logger)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, couponRepo)
	couponUC := usecase.NewCouponUsecase(couponRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, orderItemRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, orderRepo, orderItemRepo, auditRepo, e.Logger)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, productRepo)
	shippingUC := usecase.NewShippingUsecase(cartRepo, cartRepo, productRepo)
	statsUC := usecase.NewStatsUsecase(orderRepo, userRepo, productRepo)
	userUC := usecase.NewUserUsecase(userRepo, auditRepo, e.Logger)
	authUC := auth.NewAuthUsecase(
		userRepo,
		resetRepo,
		auth.NewBcryptHasher(),
		auth.NewJWTIssuer(cfg.JWTSecret),
		auth.UUIDTokenGenerator{},
		e.Logger,
	)

	//Handler生成・ルート登録
	server.RegisterRoutes(e, cfg, userRepo, server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		Coupon:       handler.NewCouponHandler(couponUC),
		Review:       handler.NewReviewHandler(reviewUC),
		Shipping:     handler.NewShippingHandler(shippingUC),
		User:         handler.NewUserHandler(userUC),
		AdminUser:    handler.NewAdminUserHandler(userUC),
		Stats:        handler.NewStatsHandler(statsUC),
	})

	//Server起動
	if err := server.Start(e, cfg.Port); err != nil {
		e.Logger.Fatal(err)
	}
}
