package jwt_test

import (
	"testing"
	"time"

	"account-service/internal/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestService(accessTTL, refreshTTL time.Duration) *jwt.TokenService {
	return jwt.NewTokenService("access-secret", "refresh-secret", accessTTL, refreshTTL)
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := newTestService(time.Minute, time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID)
	require.NoError(t, err)

	got, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	svc := newTestService(time.Minute, time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)

	got, err := svc.VerifyRefreshToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestTokenService_Expired(t *testing.T) {
	svc := newTestService(-time.Minute, time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := newTestService(time.Minute, time.Hour)

	_, err := svc.VerifyAccessToken("not.a.jwt")
	require.ErrorIs(t, err, jwt.ErrTokenMalformed)
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc := newTestService(time.Minute, time.Hour)
	other := jwt.NewTokenService("other-access", "other-refresh", time.Minute, time.Hour)

	token, err := other.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

// An access token must never pass refresh verification: the two secrets are
// independent.
func TestTokenService_CrossSecretRejected(t *testing.T) {
	svc := newTestService(time.Minute, time.Hour)

	access, err := svc.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(access)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}
