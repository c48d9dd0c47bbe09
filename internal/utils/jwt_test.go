package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("access-secret")
	refreshSecret = []byte("refresh-secret")
)

func TestGenerateTokensShareSessionID(t *testing.T) {
	userID := uuid.New()

	access, refresh, jti, err := GenerateTokens(userID, accessSecret, refreshSecret)
	require.NoError(t, err)

	accessClaims, err := VerifyJWT(access, accessSecret)
	require.NoError(t, err)
	refreshClaims, err := VerifyJWT(refresh, refreshSecret)
	require.NoError(t, err)

	assert.Equal(t, jti, accessClaims.ID)
	assert.Equal(t, jti, refreshClaims.ID)

	got, err := accessClaims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.True(t, refreshClaims.ExpiresAt.After(accessClaims.ExpiresAt.Time))
}

func TestVerifyJWTRejectsWrongSecret(t *testing.T) {
	access, refresh, _, err := GenerateTokens(uuid.New(), accessSecret, refreshSecret)
	require.NoError(t, err)

	_, err = VerifyJWT(access, refreshSecret)
	assert.Error(t, err)
	_, err = VerifyJWT(refresh, accessSecret)
	assert.Error(t, err)
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(accessSecret)
	require.NoError(t, err)

	_, err = VerifyJWT(token, accessSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyJWTRequiresSessionID(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(accessSecret)
	require.NoError(t, err)

	_, err = VerifyJWT(token, accessSecret)
	assert.Error(t, err)
}

func TestVerifyJWTRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{ID: uuid.NewString(), Subject: uuid.NewString()}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(accessSecret)
	require.NoError(t, err)

	_, err = VerifyJWT(token, accessSecret)
	assert.Error(t, err)
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "example.com", EmailDomain("Jane.Doe@Example.COM"))
	assert.Equal(t, "", EmailDomain("no-at-sign"))
}
