package apitest

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims mirrors the payload issued by a SimpleJWT backend.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
}

// GenerateToken signs an HS256 token for userID.
func GenerateToken(userID, tokenType string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID:    userID,
		TokenType: tokenType,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies tokenString and checks its type.
func ParseToken(tokenString, tokenType string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
