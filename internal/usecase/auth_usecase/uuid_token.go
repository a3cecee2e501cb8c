package auth_usecase

import "github.com/google/uuid"

type UUIDTokenGenerator struct{}

func (UUIDTokenGenerator) NewToken() string {
	return uuid.NewString()
}
