package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := NewTokenService("secret", time.Minute)

	token := ts.Issue("room-1", "userA")
	roomID, userID, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "room-1", roomID)
	assert.Equal(t, "userA", userID)
}

func TestTamperedTokenIsRejected(t *testing.T) {
	ts := NewTokenService("secret", time.Minute)

	token := ts.Issue("room-1", "userA")
	encoded, sig, ok := strings.Cut(token, ".")
	require.True(t, ok)

	// Forge a payload for another room, keeping the original signature.
	other := NewTokenService("secret", time.Minute)
	forged, _, _ := strings.Cut(other.Issue("room-2", "userA"), ".")
	_, _, err := ts.Validate(forged + "." + sig)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Garbage in either half fails too.
	_, _, err = ts.Validate(encoded + ".bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, _, err = ts.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecretIsRejected(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Minute)
	verifier := NewTokenService("secret-b", time.Minute)

	_, _, err := verifier.Validate(issuer.Issue("room-1", "userA"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	ts := NewTokenService("secret", time.Minute)
	issuedAt := time.Now()
	ts.now = func() time.Time { return issuedAt }

	token := ts.Issue("room-1", "userA")

	ts.now = func() time.Time { return issuedAt.Add(time.Minute + time.Second) }
	_, _, err := ts.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Still valid just inside the window.
	ts.now = func() time.Time { return issuedAt.Add(30 * time.Second) }
	_, _, err = ts.Validate(token)
	assert.NoError(t, err)
}
