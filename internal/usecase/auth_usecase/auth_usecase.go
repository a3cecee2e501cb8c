package auth_usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// よく使われる弱いパスワード。長くても弾く。
var weakPasswords = map[string]struct{}{
	"password1234":  {},
	"123456789012":  {},
	"qwertyuiop12":  {},
	"administrator": {},
}

const (
	minPasswordLen = 12
	resetTokenTTL  = 30 * time.Minute
)

type AuthUsecase struct {
	userRepo  repo.UserRepository
	resetRepo repo.PasswordResetRepository
	hasher    PasswordHasher
	issuer    AccessTokenIssuer
	tokens    TokenGenerator
	logger    usecase.WarnLogger
}

func NewAuthUsecase(
	userRepo repo.UserRepository,
	resetRepo repo.PasswordResetRepository,
	hasher PasswordHasher,
	issuer AccessTokenIssuer,
	tokens TokenGenerator,
	logger usecase.WarnLogger,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		hasher:    hasher,
		issuer:    issuer,
		tokens:    tokens,
		logger:    logger,
	}
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return usecase.NewHTTPError(http.StatusBadRequest, "password must be at least 12 characters")
	}
	if _, weak := weakPasswords[strings.ToLower(password)]; weak {
		return usecase.NewHTTPError(http.StatusBadRequest, "password is too weak")
	}
	return nil
}

type RegisterInput struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	FullName          string `json:"full_name"`
	Phone             string `json:"phone"`
	AddressStreet     string `json:"address_street"`
	AddressNumber     string `json:"address_number"`
	AddressComplement string `json:"address_complement"`
	AddressZip        string `json:"address_zip"`
	AddressCity       string `json:"address_city"`
	AddressState      string `json:"address_state"`
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailPattern.MatchString(email) {
		return nil, usecase.NewHTTPError(http.StatusBadRequest, "invalid email address")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, usecase.NewHTTPError(http.StatusBadRequest, "full_name is required")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:             email,
		PasswordHash:      hash,
		Role:              model.RoleUser,
		IsActive:          true,
		FullName:          strings.TrimSpace(in.FullName),
		Phone:             strings.TrimSpace(in.Phone),
		AddressStreet:     strings.TrimSpace(in.AddressStreet),
		AddressNumber:     strings.TrimSpace(in.AddressNumber),
		AddressComplement: strings.TrimSpace(in.AddressComplement),
		AddressZip:        strings.TrimSpace(in.AddressZip),
		AddressCity:       strings.TrimSpace(in.AddressCity),
		AddressState:      strings.ToUpper(strings.TrimSpace(in.AddressState)),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, usecase.NewHTTPError(http.StatusConflict, "email already registered")
		}
		return nil, err
	}
	return user, nil
}

type LoginOutput struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *model.User `json:"user"`
}

func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*LoginOutput, error) {
	user, err := u.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, usecase.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return nil, err
	}
	if !u.hasher.Verify(user.PasswordHash, password) {
		return nil, usecase.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return nil, usecase.NewHTTPError(http.StatusForbidden, "account is deactivated")
	}

	token, err := u.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if uerr := u.userRepo.Update(ctx, user); uerr != nil {
		u.logger.Warnf("last login update failed: %v", uerr)
	}

	return &LoginOutput{AccessToken: token, TokenType: "bearer", User: user}, nil
}

// RequestPasswordReset は存在しないメールでも成功を返す（列挙対策）。
// 発行したトークンは本来メール配送。配送系を持たないのでレスポンスで返す。
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", usecase.NewHTTPError(http.StatusBadRequest, "invalid email address")
	}

	if _, err := u.userRepo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}

	token := u.tokens.NewToken()
	err := u.resetRepo.Create(ctx, model.PasswordResetToken{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (u *AuthUsecase) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	reset, err := u.resetRepo.FindValidByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return usecase.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
		}
		return err
	}

	user, err := u.userRepo.FindByEmail(ctx, reset.Email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return usecase.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
		}
		return err
	}

	hash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}
	return u.resetRepo.MarkUsed(ctx, reset.ID)
}
