package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("operator", secret, time.Hour)
	require.NoError(t, err)

	got, err := GetOperatorFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "operator", got)
}

func TestGetOperatorFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("op", secret, -1*time.Second)
	require.NoError(t, err)

	_, err = GetOperatorFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGetOperatorFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("op", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetOperatorFromToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetOperatorFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetOperatorFromToken("not.a.jwt", []byte("k"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetOperatorFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{Operator: "op"})
	tok, err := token.SignedString(secret)
	require.NoError(t, err)

	_, err = GetOperatorFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetOperatorFromToken_MissingOperator(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	tok, err := token.SignedString(secret)
	require.NoError(t, err)

	_, err = GetOperatorFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
