package sync

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TokenSigner_round_trip(t *testing.T) {
	signer := NewTokenSigner("secret", time.Hour)

	token, err := signer.Issue("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func Test_TokenSigner_rejects_expired(t *testing.T) {
	signer := NewTokenSigner("secret", -time.Minute)

	token, err := signer.Issue("user-1")
	require.NoError(t, err)

	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_TokenSigner_rejects_wrong_secret(t *testing.T) {
	signer := NewTokenSigner("secret", time.Hour)
	other := NewTokenSigner("other-secret", time.Hour)

	token, err := signer.Issue("user-1")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_TokenSigner_rejects_garbage(t *testing.T) {
	signer := NewTokenSigner("secret", time.Hour)

	_, err := signer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_TokenSigner_rejects_unsigned_alg(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: "user-1",
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	signer := NewTokenSigner("secret", time.Hour)
	_, err = signer.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
