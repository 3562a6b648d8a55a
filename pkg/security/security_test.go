package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askbase-ai/askbase-ai/pkg/security"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("unit-test-secret")
	claims := security.NewTokenClaims("askbase", "askbase", "user-1", security.ROLE_ADMIN, time.Now().Add(time.Hour).Unix())

	token, err := security.GenerateJWT(claims, secret)
	require.NoError(t, err)

	parsed, err := security.VerifyToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.GetUser())
	assert.True(t, parsed.IsAdmin())
}

func TestVerifyExpiredToken(t *testing.T) {
	secret := []byte("unit-test-secret")
	claims := security.NewTokenClaims("askbase", "askbase", "user-1", security.ROLE_USER, time.Now().Add(-time.Hour).Unix())

	token, err := security.GenerateJWT(claims, secret)
	require.NoError(t, err)

	_, err = security.VerifyToken(token, secret)
	assert.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	claims := security.NewTokenClaims("askbase", "askbase", "user-1", security.ROLE_USER, time.Now().Add(time.Hour).Unix())

	token, err := security.GenerateJWT(claims, []byte("secret-a"))
	require.NoError(t, err)

	_, err = security.VerifyToken(token, []byte("secret-b"))
	assert.Error(t, err)
}
