package apitest

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("user-123", TokenTypeAccess, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, TokenTypeAccess, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("u1", TokenTypeAccess, secret, -time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, TokenTypeAccess, secret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", TokenTypeAccess, []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, TokenTypeAccess, []byte("wrong-secret"))
	require.Error(t, err)
}

func TestParseToken_WrongType(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("u3", TokenTypeRefresh, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, TokenTypeAccess, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
