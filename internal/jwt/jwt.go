package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// TokenService signs and verifies the two bearer tokens. The access and
// refresh secrets are independent so a leaked access token can never be
// replayed as a refresh token or vice versa.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) GenerateAccessToken(userID uuid.UUID) (string, error) {
	return sign(userID, s.accessSecret, s.accessTTL)
}

func (s *TokenService) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return sign(userID, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) VerifyAccessToken(raw string) (uuid.UUID, error) {
	return verify(raw, s.accessSecret)
}

func (s *TokenService) VerifyRefreshToken(raw string) (uuid.UUID, error) {
	return verify(raw, s.refreshSecret)
}

func sign(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(raw string, secret []byte) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return uuid.Nil, ErrTokenMalformed
		default:
			return uuid.Nil, ErrTokenSignatureInvalid
		}
	}

	if !token.Valid {
		return uuid.Nil, ErrTokenSignatureInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}

	return userID, nil
}
