package auth_usecase

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"app/internal/domain/model"
)

const accessTokenTTL = 24 * time.Hour

// HS256 のアクセストークンを発行する。subはユーザーID。
type JWTIssuer struct {
	secret []byte
}

func NewJWTIssuer(secret string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret)}
}

func (i *JWTIssuer) Issue(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}
