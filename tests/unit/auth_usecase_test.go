package unit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type AuthUserRepoMock struct{ mock.Mock }

func (m *AuthUserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *AuthUserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *AuthUserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *AuthUserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *AuthUserRepoMock) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	panic("not used in AuthUsecase tests")
}

func (m *AuthUserRepoMock) Delete(ctx context.Context, userID int64) error {
	panic("not used in AuthUsecase tests")
}

func (m *AuthUserRepoMock) CountCustomers(ctx context.Context) (int64, error) {
	panic("not used in AuthUsecase tests")
}

type AuthResetRepoMock struct{ mock.Mock }

func (m *AuthResetRepoMock) Create(ctx context.Context, t model.PasswordResetToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *AuthResetRepoMock) FindValidByToken(ctx context.Context, token string) (model.PasswordResetToken, error) {
	args := m.Called(ctx, token)
	t, _ := args.Get(0).(model.PasswordResetToken)
	return t, args.Error(1)
}

func (m *AuthResetRepoMock) MarkUsed(ctx context.Context, tokenID int64) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// bcryptを回さない偽hasher
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (fakeHasher) Verify(hash, plain string) bool    { return hash == "hashed:"+plain }

type fakeIssuer struct{}

func (fakeIssuer) Issue(user *model.User) (string, error) { return "jwt-for-user", nil }

type fakeTokenGen struct{}

func (fakeTokenGen) NewToken() string { return "reset-token-1" }

type authFixture struct {
	uc    *auth_usecase.AuthUsecase
	users *AuthUserRepoMock
	reset *AuthResetRepoMock
}

func newAuthFixture() authFixture {
	f := authFixture{
		users: new(AuthUserRepoMock),
		reset: new(AuthResetRepoMock),
	}
	f.uc = auth_usecase.NewAuthUsecase(f.users, f.reset, fakeHasher{}, fakeIssuer{}, fakeTokenGen{}, nopLogger{})
	return f
}

func validRegisterInput() auth_usecase.RegisterInput {
	return auth_usecase.RegisterInput{
		Email:         "taro@example.com",
		Password:      "correct-horse-battery",
		FullName:      "Yamada Taro",
		Phone:         "090-0000-0000",
		AddressStreet: "Chuo-dori",
		AddressNumber: "1-2-3",
		AddressZip:    "12345-678",
		AddressCity:   "Shibuya",
		AddressState:  "TK",
	}
}

// =====================
// 会員登録
// =====================

func TestAuthUsecase_Register_InvalidEmail(t *testing.T) {
	f := newAuthFixture()

	in := validRegisterInput()
	in.Email = "not-an-email"

	_, err := f.uc.Register(context.Background(), in)
	assertHTTPError(t, err, http.StatusBadRequest, "invalid email")
}

func TestAuthUsecase_Register_ShortPassword(t *testing.T) {
	f := newAuthFixture()

	in := validRegisterInput()
	in.Password = "short"

	_, err := f.uc.Register(context.Background(), in)
	assertHTTPError(t, err, http.StatusBadRequest, "at least 12")
}

func TestAuthUsecase_Register_WeakPassword(t *testing.T) {
	f := newAuthFixture()

	in := validRegisterInput()
	in.Password = "Password1234"

	_, err := f.uc.Register(context.Background(), in)
	assertHTTPError(t, err, http.StatusBadRequest, "too weak")
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()

	f.users.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicate)

	_, err := f.uc.Register(context.Background(), validRegisterInput())
	assertHTTPError(t, err, http.StatusConflict, "already registered")
}

func TestAuthUsecase_Register_Success(t *testing.T) {
	f := newAuthFixture()

	f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "taro@example.com" &&
			u.Role == model.RoleUser &&
			u.IsActive &&
			u.PasswordHash == "hashed:correct-horse-battery"
	})).Return(nil)

	user, err := f.uc.Register(context.Background(), validRegisterInput())
	assert.NoError(t, err)
	assert.Equal(t, "taro@example.com", user.Email)

	f.users.AssertExpectations(t)
}

// =====================
// ログイン
// =====================

func TestAuthUsecase_Login_UnknownEmail(t *testing.T) {
	f := newAuthFixture()

	f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repo.ErrUserNotFound)

	_, err := f.uc.Login(context.Background(), "nobody@example.com", "whatever-password")
	assertHTTPError(t, err, http.StatusUnauthorized, "invalid email or password")
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture()

	f.users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(&model.User{ID: 1, Email: "taro@example.com", PasswordHash: "hashed:real", IsActive: true}, nil)

	_, err := f.uc.Login(context.Background(), "taro@example.com", "wrong")
	assertHTTPError(t, err, http.StatusUnauthorized, "invalid email or password")
}

func TestAuthUsecase_Login_DeactivatedAccount(t *testing.T) {
	f := newAuthFixture()

	f.users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(&model.User{ID: 1, Email: "taro@example.com", PasswordHash: "hashed:secret-password", IsActive: false}, nil)

	_, err := f.uc.Login(context.Background(), "taro@example.com", "secret-password")
	assertHTTPError(t, err, http.StatusForbidden, "deactivated")
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	f := newAuthFixture()

	f.users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(&model.User{ID: 1, Email: "taro@example.com", PasswordHash: "hashed:secret-password", IsActive: true}, nil)
	f.users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.LastLoginAt != nil
	})).Return(nil)

	out, err := f.uc.Login(context.Background(), "taro@example.com", "secret-password")
	assert.NoError(t, err)
	assert.Equal(t, "jwt-for-user", out.AccessToken)
	assert.Equal(t, "bearer", out.TokenType)

	f.users.AssertExpectations(t)
}

// =====================
// パスワードリセット
// =====================

// 存在しないメールでもエラーにしない（列挙対策）
func TestAuthUsecase_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture()

	f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repo.ErrUserNotFound)

	token, err := f.uc.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "", token)

	f.reset.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_RequestPasswordReset_IssuesToken(t *testing.T) {
	f := newAuthFixture()

	f.users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(&model.User{ID: 1, Email: "taro@example.com"}, nil)
	f.reset.On("Create", mock.Anything, mock.MatchedBy(func(tok model.PasswordResetToken) bool {
		return tok.Email == "taro@example.com" &&
			tok.Token == "reset-token-1" &&
			tok.ExpiresAt.After(time.Now())
	})).Return(nil)

	token, err := f.uc.RequestPasswordReset(context.Background(), "taro@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "reset-token-1", token)

	f.reset.AssertExpectations(t)
}

func TestAuthUsecase_ConfirmPasswordReset_InvalidToken(t *testing.T) {
	f := newAuthFixture()

	f.reset.On("FindValidByToken", mock.Anything, "bogus").
		Return(model.PasswordResetToken{}, repo.ErrNotFound)

	err := f.uc.ConfirmPasswordReset(context.Background(), "bogus", "new-long-password")
	assertHTTPError(t, err, http.StatusBadRequest, "invalid or expired token")
}

func TestAuthUsecase_ConfirmPasswordReset_Success(t *testing.T) {
	f := newAuthFixture()

	f.reset.On("FindValidByToken", mock.Anything, "reset-token-1").
		Return(model.PasswordResetToken{ID: 9, Email: "taro@example.com", Token: "reset-token-1"}, nil)
	f.users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(&model.User{ID: 1, Email: "taro@example.com", PasswordHash: "hashed:old"}, nil)
	f.users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.PasswordHash == "hashed:new-long-password"
	})).Return(nil)
	f.reset.On("MarkUsed", mock.Anything, int64(9)).Return(nil)

	err := f.uc.ConfirmPasswordReset(context.Background(), "reset-token-1", "new-long-password")
	assert.NoError(t, err)

	f.reset.AssertExpectations(t)
	f.users.AssertExpectations(t)
}
