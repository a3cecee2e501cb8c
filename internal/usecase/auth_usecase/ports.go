package auth_usecase

import "app/internal/domain/model"

// パスワードのハッシュ化と照合
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash string, plain string) bool
}

// アクセストークンの発行
type AccessTokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// リセットトークンの採番
type TokenGenerator interface {
	NewToken() string
}
