package pkg

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieSigner(t *testing.T) {
	s := NewCookieSigner("secret")
	now := time.Now()

	token, err := s.Sign("sid-1", now, now.Add(time.Hour))
	require.NoError(t, err)

	sid, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sid)

	_, err = NewCookieSigner("other").Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	expired, err := s.Sign("sid-1", now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = s.Parse(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = s.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrTokenParseFailure)

	empty, err := s.Sign("", now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = s.Parse(empty)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCookieSignerRejectsOtherAlgorithms(t *testing.T) {
	s := NewCookieSigner("secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, SessionClaims{
		SessionID: "sid",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = s.Parse(signed)
	assert.Error(t, err)
}
