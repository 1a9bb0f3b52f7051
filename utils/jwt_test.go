package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue("a@x.test", "Asha")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.test", claims.Email)
	assert.Equal(t, "Asha", claims.Name)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	_, err := issuer.Issue("", "")
	assert.Error(t, err)

	other, err := NewTokenIssuer("other", time.Hour).Issue("a@x.test", "")
	require.NoError(t, err)
	_, err = issuer.Verify(other)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = issuer.Verify("not.a.token")
	assert.Error(t, err)

	token, err := issuer.Issue("a@x.test", "")
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "a@x.test"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(unsigned)
	assert.Error(t, err)
}
