package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestParse_Verified(t *testing.T) {
	tok := sign(t, "k", jwt.MapClaims{
		"user_id": float64(42),
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role": "Admin",
		"unique_name": "Asha",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	id, err := Parser{Secret: []byte("k")}.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", id.Subject)
	assert.True(t, id.IsAdmin())
	assert.False(t, id.IsCustomer())
	assert.Equal(t, "Asha", id.Name)
	assert.Equal(t, tok, id.Token)
}

func TestParse_WrongSecretOrExpired(t *testing.T) {
	tok := sign(t, "k", jwt.MapClaims{"sub": "1", "role": "user"})
	_, err := Parser{Secret: []byte("other")}.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := sign(t, "k", jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Hour).Unix()})
	_, err = Parser{Secret: []byte("k")}.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_UnverifiedWithoutSecret(t *testing.T) {
	tok := sign(t, "backend-only", jwt.MapClaims{"sub": "9", "role": "user"})

	id, err := Parser{}.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "9", id.Subject)
	assert.True(t, id.IsCustomer())
}

func TestParse_RequiresSubject(t *testing.T) {
	_, err := Parser{}.Parse(sign(t, "k", jwt.MapClaims{"role": "user"}))
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = Parser{}.Parse("")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}
