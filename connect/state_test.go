package connect

import (
	"testing"
	"time"

	social "github.com/goliatone/go-social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateManager_EncryptDecrypt(t *testing.T) {
	sm := NewEncryptedStateManager(
		[]byte("0123456789abcdef0123456789abcdef"),
		[]byte("fedcba9876543210fedcba9876543210"),
		10*time.Minute,
	)

	state := &ConnectState{
		Platform:     social.PlatformInstagram,
		UserID:       "6f9f7708-6b7c-4f1d-a4f0-006b6e93f1a5",
		CodeVerifier: "test-verifier",
		RedirectURL:  "/settings",
	}

	encoded, err := sm.Encode(state)
	require.NoError(t, err)

	decoded, err := sm.Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, state.Platform, decoded.Platform)
	assert.Equal(t, state.UserID, decoded.UserID)
	assert.Equal(t, state.CodeVerifier, decoded.CodeVerifier)
	assert.Equal(t, state.RedirectURL, decoded.RedirectURL)
	assert.NotEmpty(t, decoded.Nonce)
	assert.Greater(t, decoded.ExpiresAt, time.Now().Unix())
}

func TestStateManager_ExpiredState(t *testing.T) {
	sm := NewEncryptedStateManager(
		[]byte("0123456789abcdef0123456789abcdef"),
		[]byte("fedcba9876543210fedcba9876543210"),
		-1*time.Minute,
	)

	state := &ConnectState{Platform: social.PlatformTwitter}
	encoded, err := sm.Encode(state)
	require.NoError(t, err)

	_, err = sm.Decode(encoded)
	assert.ErrorIs(t, err, ErrStateExpired)
}

func TestStateManager_TamperedToken(t *testing.T) {
	sm := NewEncryptedStateManager(
		[]byte("0123456789abcdef0123456789abcdef"),
		[]byte("fedcba9876543210fedcba9876543210"),
		10*time.Minute,
	)

	encoded, err := sm.Encode(&ConnectState{Platform: social.PlatformFacebook})
	require.NoError(t, err)

	tampered := "A" + encoded[1:]
	_, err = sm.Decode(tampered)
	assert.Error(t, err)
}

func TestStateManager_WrongKeyRejected(t *testing.T) {
	sm := NewEncryptedStateManager(
		[]byte("0123456789abcdef0123456789abcdef"),
		[]byte("fedcba9876543210fedcba9876543210"),
		10*time.Minute,
	)
	other := NewEncryptedStateManager(
		[]byte("abcdef0123456789abcdef0123456789"),
		[]byte("0123456789fedcba0123456789fedcba"),
		10*time.Minute,
	)

	encoded, err := sm.Encode(&ConnectState{Platform: social.PlatformInstagram})
	require.NoError(t, err)

	_, err = other.Decode(encoded)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCodeChallenge(t *testing.T) {
	verifier, err := generateCodeVerifier()
	require.NoError(t, err)
	require.NotEmpty(t, verifier)

	challenge := computeCodeChallenge(verifier)
	assert.NotEmpty(t, challenge)
	assert.NotEqual(t, verifier, challenge)
	assert.Equal(t, challenge, computeCodeChallenge(verifier))
}
