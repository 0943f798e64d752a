// Package jwt выпускает и проверяет токены сессии пользователя MoVibes.
package jwt

import (
	"time"
)

// Maker создаёт и разбирает токены сессии.
type Maker interface {
	GenerateToken(userID, email string, staff bool) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены HS256 общим секретом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт MakerImpl.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// TTL время жизни выпускаемых токенов, используется для срока cookie.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
