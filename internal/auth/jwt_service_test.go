package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := NewJWTService("test-secret", time.Hour)

	token, err := service.GenerateToken(42, "student@umn.edu")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "student@umn.edu", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	service := NewJWTService("test-secret", -time.Minute)

	token, err := service.GenerateToken(1, "student@umn.edu")
	assert.NoError(t, err)

	claims, err := service.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_TamperedToken(t *testing.T) {
	service := NewJWTService("test-secret", time.Hour)

	token, err := service.GenerateToken(1, "student@umn.edu")
	assert.NoError(t, err)

	claims, err := service.ValidateToken(token + "x")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour)
	verifier := NewJWTService("secret-b", time.Hour)

	token, err := issuer.GenerateToken(1, "student@umn.edu")
	assert.NoError(t, err)

	claims, err := verifier.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
