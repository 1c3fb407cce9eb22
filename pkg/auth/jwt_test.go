package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newTestPair(t *testing.T, expiry time.Duration) (*JWTGenerator, *JWTValidator) {
	t.Helper()

	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SigningMethod: "HS256",
		SecretKey:     testSecret,
		Issuer:        "familytree-backend",
		ExpiryTime:    expiry,
	})
	require.NoError(t, err)

	validator, err := NewJWTValidator(JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     testSecret,
		Issuer:        "familytree-backend",
	})
	require.NoError(t, err)

	return generator, validator
}

func TestJWTRoundTrip(t *testing.T) {
	generator, validator := newTestPair(t, time.Hour)

	token, err := generator.GenerateToken("account-123", "ada@example.com")
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "account-123", claims.AccountID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestJWTValidatorStripsBearerPrefix(t *testing.T) {
	generator, validator := newTestPair(t, time.Hour)

	token, err := generator.GenerateToken("account-123", "ada@example.com")
	require.NoError(t, err)

	claims, err := validator.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "account-123", claims.AccountID)
}

func TestJWTValidatorRejectsExpiredToken(t *testing.T) {
	generator, validator := newTestPair(t, -time.Minute)

	token, err := generator.GenerateToken("account-123", "ada@example.com")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTValidatorRejectsWrongSecret(t *testing.T) {
	generator, _ := newTestPair(t, time.Hour)

	other, err := NewJWTValidator(JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     "a-different-secret",
		Issuer:        "familytree-backend",
	})
	require.NoError(t, err)

	token, err := generator.GenerateToken("account-123", "ada@example.com")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTValidatorRejectsWrongIssuer(t *testing.T) {
	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SigningMethod: "HS256",
		SecretKey:     testSecret,
		Issuer:        "someone-else",
		ExpiryTime:    time.Hour,
	})
	require.NoError(t, err)

	_, validator := newTestPair(t, time.Hour)

	token, err := generator.GenerateToken("account-123", "ada@example.com")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTValidatorRejectsMissingToken(t *testing.T) {
	_, validator := newTestPair(t, time.Hour)

	_, err := validator.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestUserContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	_, err := GetUserFromContext(ctx)
	assert.Error(t, err)

	ctx = SetUserInContext(ctx, &UserContext{AccountID: "account-123", Email: "ada@example.com"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "account-123", user.AccountID)
}
