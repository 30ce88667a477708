package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmarkd/bookmarkd/pkg/config"
)

func newTestTokens() *TokenManager {
	return NewTokenManager(&config.AuthConfig{
		Secret:   "test-secret",
		TokenTTL: time.Hour,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := newTestTokens()

	token, err := tokens.CreateToken(42)
	require.NoError(t, err)

	uid, err := tokens.ParseToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, uid)
}

func TestParseTokenWrongSecret(t *testing.T) {
	tokens := newTestTokens()
	other := NewTokenManager(&config.AuthConfig{Secret: "other-secret", TokenTTL: time.Hour})

	token, err := other.CreateToken(42)
	require.NoError(t, err)

	_, err = tokens.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	expired := NewTokenManager(&config.AuthConfig{Secret: "test-secret", TokenTTL: -time.Minute})

	token, err := expired.CreateToken(42)
	require.NoError(t, err)

	_, err = NewTokenManager(&config.AuthConfig{Secret: "test-secret", TokenTTL: time.Hour}).ParseToken(token)
	assert.Error(t, err)
}

func TestExtractTokenID(t *testing.T) {
	tokens := newTestTokens()

	token, err := tokens.CreateToken(7)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	uid, err := tokens.ExtractTokenID(req)
	require.NoError(t, err)
	assert.EqualValues(t, 7, uid)

	req.Header.Set("Authorization", token)
	_, err = tokens.ExtractTokenID(req)
	assert.Error(t, err)

	req.Header.Del("Authorization")
	_, err = tokens.ExtractTokenID(req)
	assert.Error(t, err)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword(hash, "secret123"))
	assert.Error(t, VerifyPassword(hash, "wrong"))
}
