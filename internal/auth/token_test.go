package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carhive/carhive/internal/platform/httpx"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, err := tm.Issue(42)
	require.NoError(t, err)

	userID, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Issue(1)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("secret", -time.Minute)
	token, err := tm.Issue(1)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestTokenGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}
