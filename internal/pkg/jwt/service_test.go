package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACService_RoundTrip(t *testing.T) {
	s := NewHMACService("secret", time.Hour, "store-monitor")
	tok, err := s.GenerateAPIToken("ops-dashboard")
	require.NoError(t, err)

	c, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "ops-dashboard", c.Subject)
	assert.Equal(t, TokenTypeAPI, c.TokenType)
}

func TestHMACService_Expired(t *testing.T) {
	s := NewHMACService("secret", time.Hour, "")
	issued := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return issued }
	tok, err := s.GenerateAPIToken("ops")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestHMACService_WrongSecretOrIssuer(t *testing.T) {
	tok, err := NewHMACService("secret", time.Hour, "a").GenerateAPIToken("ops")
	require.NoError(t, err)

	_, err = NewHMACService("other", time.Hour, "a").ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = NewHMACService("secret", time.Hour, "b").ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = NewHMACService("secret", time.Hour, "a").ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_RequiresSecretAndSubject(t *testing.T) {
	_, err := NewHMACService("", time.Hour, "").GenerateAPIToken("ops")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = NewHMACService("secret", time.Hour, "").GenerateAPIToken("  ")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
