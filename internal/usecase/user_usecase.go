package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type UserUsecase struct {
	userRepo  repo.UserRepository
	auditRepo repo.AuditLogRepository
	logger    WarnLogger
}

func NewUserUsecase(userRepo repo.UserRepository, auditRepo repo.AuditLogRepository, logger WarnLogger) *UserUsecase {
	return &UserUsecase{userRepo: userRepo, auditRepo: auditRepo, logger: logger}
}

func (u *UserUsecase) Me(ctx context.Context, userID int64) (*model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

type UpdateProfileInput struct {
	FullName          string `json:"full_name"`
	Phone             string `json:"phone"`
	AddressStreet     string `json:"address_street"`
	AddressNumber     string `json:"address_number"`
	AddressComplement string `json:"address_complement"`
	AddressZip        string `json:"address_zip"`
	AddressCity       string `json:"address_city"`
	AddressState      string `json:"address_state"`
}

func (u *UserUsecase) UpdateMe(ctx context.Context, userID int64, in UpdateProfileInput) (*model.User, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "full_name is required")
	}
	if !zipPattern.MatchString(in.AddressZip) {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid zip code")
	}
	if len(in.AddressState) != 2 {
		return nil, NewHTTPError(http.StatusBadRequest, "address_state must be a 2-letter code")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return nil, err
	}

	user.FullName = strings.TrimSpace(in.FullName)
	user.Phone = strings.TrimSpace(in.Phone)
	user.AddressStreet = strings.TrimSpace(in.AddressStreet)
	user.AddressNumber = strings.TrimSpace(in.AddressNumber)
	user.AddressComplement = strings.TrimSpace(in.AddressComplement)
	user.AddressZip = in.AddressZip
	user.AddressCity = strings.TrimSpace(in.AddressCity)
	user.AddressState = strings.ToUpper(in.AddressState)

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *UserUsecase) AdminList(ctx context.Context, skip, limit int) ([]model.User, error) {
	if skip < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "skip must be >= 0")
	}
	if limit < 1 || limit > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
	}
	return u.userRepo.List(ctx, skip, limit)
}

type AdminUpdateUserInput struct {
	IsActive *bool   `json:"is_active"`
	Role     *string `json:"role"`
}

// AdminUpdate は有効フラグとロールだけ変更できる。自分自身の降格・無効化は不可。
func (u *UserUsecase) AdminUpdate(ctx context.Context, actorID, userID int64, in AdminUpdateUserInput) (*model.User, error) {
	if in.Role != nil && *in.Role != string(model.RoleUser) && *in.Role != string(model.RoleAdmin) {
		return nil, NewHTTPError(http.StatusBadRequest, "unknown role")
	}
	if actorID == userID {
		if (in.IsActive != nil && !*in.IsActive) || (in.Role != nil && *in.Role != string(model.RoleAdmin)) {
			return nil, NewHTTPError(http.StatusBadRequest, "cannot deactivate or demote yourself")
		}
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return nil, err
	}
	before := *user

	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Role != nil {
		user.Role = model.Role(*in.Role)
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	u.audit(ctx, actorID, userID, before, *user)
	return user, nil
}

func (u *UserUsecase) AdminDelete(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return NewHTTPError(http.StatusBadRequest, "cannot delete yourself")
	}
	if err := u.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}
	return nil
}

func (u *UserUsecase) audit(ctx context.Context, actorID, userID int64, before, after model.User) {
	entry := model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionUpdateUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
	}
	if b, err := json.Marshal(map[string]any{"is_active": before.IsActive, "role": before.Role}); err == nil {
		entry.BeforeJSON = string(b)
	}
	if a, err := json.Marshal(map[string]any{"is_active": after.IsActive, "role": after.Role}); err == nil {
		entry.AfterJSON = string(a)
	}
	if err := u.auditRepo.Create(ctx, entry); err != nil {
		u.logger.Warnf("audit log write failed: %v", err)
	}
}
