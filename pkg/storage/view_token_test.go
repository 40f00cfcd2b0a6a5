package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewTokenRoundTrip(t *testing.T) {
	signer := NewViewTokenSigner("secret", time.Minute)

	token, expiresAt, err := signer.Generate("upload-1")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))
	assert.NoError(t, signer.Validate("upload-1", token))
}

func TestViewTokenWrongUpload(t *testing.T) {
	signer := NewViewTokenSigner("secret", time.Minute)

	token, _, err := signer.Generate("upload-1")
	require.NoError(t, err)
	assert.Error(t, signer.Validate("upload-2", token))
}

func TestViewTokenTampered(t *testing.T) {
	signer := NewViewTokenSigner("secret", time.Minute)

	token, _, err := signer.Generate("upload-1")
	require.NoError(t, err)
	assert.Error(t, signer.Validate("upload-1", token+"ff"))
	assert.Error(t, signer.Validate("upload-1", "garbage"))
}

func TestViewTokenExpired(t *testing.T) {
	signer := NewViewTokenSigner("secret", time.Nanosecond)

	token, _, err := signer.Generate("upload-1")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	assert.Error(t, signer.Validate("upload-1", token))
}

func TestViewTokenDifferentSecret(t *testing.T) {
	token, _, err := NewViewTokenSigner("secret-a", time.Minute).Generate("upload-1")
	require.NoError(t, err)
	assert.Error(t, NewViewTokenSigner("secret-b", time.Minute).Validate("upload-1", token))
}
