package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/carelink/carelink-api/internal/config"
	"github.com/carelink/carelink-api/internal/domain"
)

func testManager(accessTTL time.Duration) *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-do-not-use-in-production",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "carelink-test",
	})
}

func TestTokenPairRoundTrip(t *testing.T) {
	m := testManager(time.Hour)
	in := &domain.Claims{UserID: uuid.New(), Email: "doc@example.com", Role: domain.RoleDoctor}

	pair, err := m.GenerateTokenPair(in)
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)

	out, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, in.UserID, out.UserID)
	require.Equal(t, in.Email, out.Email)
	require.Equal(t, domain.RoleDoctor, out.Role)
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	m := testManager(time.Hour)
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RolePatient})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenTypeMismatch)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := testManager(-time.Minute)
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RolePatient})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestForeignSignatureRejected(t *testing.T) {
	m := testManager(time.Hour)
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin})
	require.NoError(t, err)

	other := NewJWTManager(config.JWTConfig{
		Secret:          "a-different-secret-entirely",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
		Issuer:          "carelink-test",
	})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGarbageTokenRejected(t *testing.T) {
	m := testManager(time.Hour)
	_, err := m.ValidateAccessToken("not.a.token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
