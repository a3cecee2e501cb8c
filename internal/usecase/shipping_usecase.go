package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

var zipPattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)

// 容積重量の換算係数（cm3 / kg）
const volumetricDivisor = 6000.0

type ShippingUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewShippingUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *ShippingUsecase {
	return &ShippingUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

type ShippingOption struct {
	Service      string          `json:"service"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDays int             `json:"delivery_days"`
}

// Quote はカート全体の実重量と容積重量の大きい方で送料を見積もる。
func (u *ShippingUsecase) Quote(ctx context.Context, userID int64, zip string) ([]ShippingOption, error) {
	if !zipPattern.MatchString(zip) {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid zip code")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		return nil, err
	}
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	totalWeight := 0.0
	totalVolume := 0.0
	for _, item := range items {
		product, perr := u.productRepo.FindByID(ctx, item.ProductID)
		if perr != nil {
			if errors.Is(perr, repo.ErrNotFound) {
				continue
			}
			return nil, perr
		}
		qty := float64(item.Quantity)
		totalWeight += product.WeightKg * qty
		totalVolume += product.HeightCm * product.WidthCm * product.LengthCm * qty
	}

	chargeable := totalWeight
	if volumetric := totalVolume / volumetricDivisor; volumetric > chargeable {
		chargeable = volumetric
	}

	weight := decimal.NewFromFloat(chargeable)
	economy := decimal.NewFromFloat(19.90).Add(weight.Mul(decimal.NewFromFloat(4.50))).Round(2)
	express := decimal.NewFromFloat(34.90).Add(weight.Mul(decimal.NewFromFloat(7.90))).Round(2)

	return []ShippingOption{
		{Service: "economy", Price: economy, DeliveryDays: 8},
		{Service: "express", Price: express, DeliveryDays: 3},
	}, nil
}
