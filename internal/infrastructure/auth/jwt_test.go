package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "test-secret-at-least-32-characters-long",
		TokenExpiration: time.Hour,
		Issuer:          "storefront-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(userID, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "storefront-test", claims.Issuer)

	parsed, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestJWTService_ValidateToken_Errors(t *testing.T) {
	svc := newTestJWTService()

	t.Run("rejects garbage", func(t *testing.T) {
		claims, err := svc.ValidateToken("not-a-token")
		assert.Nil(t, claims)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:          "another-secret-also-32-characters-xx",
			TokenExpiration: time.Hour,
			Issuer:          "storefront-test",
		})
		token, _, err := other.GenerateToken(uuid.New(), "admin")
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		assert.Nil(t, claims)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:          "test-secret-at-least-32-characters-long",
			TokenExpiration: -time.Minute,
			Issuer:          "storefront-test",
		})
		token, _, err := expired.GenerateToken(uuid.New(), "admin")
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		assert.Nil(t, claims)
		assert.Equal(t, ErrExpiredToken, err)
	})
}
