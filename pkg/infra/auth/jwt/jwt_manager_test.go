package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTokenWithSecret(secret string, method jwtlib.SigningMethod, claims jwtlib.Claims) (string, error) {
	token := jwtlib.NewWithClaims(method, claims)
	return token.SignedString([]byte(secret))
}

func TestCreateToken_AndDecode_Success(t *testing.T) {
	mgr := NewJwtManager("test-secret")

	token, err := mgr.CreateToken("u-1", []string{"admin"}, time.Hour)
	require.NoError(t, err)

	claims, err := mgr.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, []string{"admin"}, claims.Roles)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestDecodeToken_FallsBackToSubject(t *testing.T) {
	signed, err := signTokenWithSecret("s", jwtlib.SigningMethodHS256, &Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{Subject: "u-2"},
	})
	require.NoError(t, err)

	claims, err := NewJwtManager("s").DecodeToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u-2", claims.UserID)
}

func TestDecodeToken_Rejections(t *testing.T) {
	wrongSecret, err := signTokenWithSecret("other", jwtlib.SigningMethodHS256, &Claims{UserID: "u"})
	require.NoError(t, err)
	wrongAlg, err := signTokenWithSecret("s", jwtlib.SigningMethodHS512, &Claims{UserID: "u"})
	require.NoError(t, err)
	noUser, err := signTokenWithSecret("s", jwtlib.SigningMethodHS256, &Claims{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", wrongSecret},
		{"wrong algorithm", wrongAlg},
		{"missing user", noUser},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}
	mgr := NewJwtManager("s")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := mgr.DecodeToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestDecodeToken_Expired(t *testing.T) {
	signed, err := signTokenWithSecret("s", jwtlib.SigningMethodHS256, &Claims{
		UserID: "u",
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-1 * time.Hour)),
		},
	})
	require.NoError(t, err)

	_, err = NewJwtManager("s").DecodeToken(signed)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestDecodeToken_NoSecretConfigured(t *testing.T) {
	signed, err := signTokenWithSecret("x", jwtlib.SigningMethodHS256, &Claims{UserID: "u"})
	require.NoError(t, err)

	_, err = NewJwtManager("").DecodeToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
