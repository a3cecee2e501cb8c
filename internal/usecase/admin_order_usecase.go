package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminOrderUsecase struct {
	txManager     repo.TransactionManager
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	auditRepo     repo.AuditLogRepository
	logger        WarnLogger
}

func NewAdminOrderUsecase(
	txManager repo.TransactionManager,
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	auditRepo repo.AuditLogRepository,
	logger WarnLogger,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		txManager:     txManager,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		auditRepo:     auditRepo,
		logger:        logger,
	}
}

type AdminOrderListInput struct {
	Skip   int
	Limit  int
	Status string
}

type AdminOrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
}

func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (*AdminOrderListOutput, error) {
	if in.Skip < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "skip must be >= 0")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
	}
	if in.Status != "" && !model.IsValidOrderStatus(in.Status) {
		return nil, NewHTTPError(http.StatusBadRequest, "unknown order status")
	}
	items, total, err := u.orderRepo.ListAdmin(ctx, repo.AdminOrderListFilter{
		Skip:   in.Skip,
		Limit:  in.Limit,
		Status: in.Status,
	})
	if err != nil {
		return nil, err
	}
	return &AdminOrderListOutput{Items: items, Total: total, Skip: in.Skip, Limit: in.Limit}, nil
}

// UpdateStatus は状態機械に従って遷移させる。pending_payment / paid からの
// キャンセル時は在庫を戻す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorID int64, orderID int64, status string) (*model.Order, error) {
	if !model.IsValidOrderStatus(status) {
		return nil, NewHTTPError(http.StatusBadRequest, "unknown order status")
	}
	to := model.OrderStatus(status)

	var before model.Order
	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return err
		}
		before = order

		if !model.CanTransition(order.Status, to) {
			return NewHTTPError(http.StatusBadRequest,
				"cannot transition order from '"+string(order.Status)+"' to '"+string(to)+"'")
		}

		if to == model.OrderStatusCancelled &&
			(order.Status == model.OrderStatusPendingPayment || order.Status == model.OrderStatusPaid) {
			items, ierr := r.OrderItems().ListByOrderID(ctx, orderID)
			if ierr != nil {
				return ierr
			}
			for _, item := range items {
				if item.ProductID == nil {
					continue
				}
				if rerr := r.Products().IncreaseStock(ctx, *item.ProductID, item.Quantity); rerr != nil {
					//商品ごと消えている明細は在庫を戻しようがない
					if errors.Is(rerr, repo.ErrNotFound) {
						continue
					}
					return rerr
				}
			}
		}

		return r.Orders().UpdateStatus(ctx, orderID, to)
	})
	if err != nil {
		return nil, err
	}

	after, err := u.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	u.audit(ctx, actorID, orderID, before, after)
	return &after, nil
}

func (u *AdminOrderUsecase) audit(ctx context.Context, actorID, orderID int64, before, after model.Order) {
	entry := model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionUpdateOrderStatus,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
	}
	if b, err := json.Marshal(map[string]any{"status": before.Status}); err == nil {
		entry.BeforeJSON = string(b)
	}
	if a, err := json.Marshal(map[string]any{"status": after.Status}); err == nil {
		entry.AfterJSON = string(a)
	}
	if err := u.auditRepo.Create(ctx, entry); err != nil {
		u.logger.Warnf("audit log write failed: %v", err)
	}
}
