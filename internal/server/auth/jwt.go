// Package auth issues and checks the tokens that guard the admin API.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the operator name.
type Claims struct {
	jwt.RegisteredClaims
	Operator string
}

// GenerateToken signs an HS256 token for operator valid for validityDuration.
func GenerateToken(operator string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			Subject:   operator,
		},
		Operator: operator,
	})

	return token.SignedString(secretKey)
}

// GetOperatorFromToken verifies tokenString and returns the operator name.
// Expired tokens yield common.ErrTokenExpired, a verified token without an
// operator common.ErrorUnauthorized, any other failure common.ErrInvalidToken.
func GetOperatorFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}
	if claims.Operator == "" {
		return "", common.ErrorUnauthorized
	}

	return claims.Operator, nil
}
