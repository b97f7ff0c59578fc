package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid access token")

// DefaultTokenTTL is how long a room access token stays valid.
const DefaultTokenTTL = time.Hour

// TokenService issues the access credentials a joined participant presents
// to the realtime layer. Tokens are HMAC-signed and scoped to one
// (room, user) pair; the realtime server validates them on channel join.
type TokenService struct {
	secret []byte
	ttl    time.Duration

	// now is swappable for tests
	now func() time.Time
}

// NewTokenService creates a token service with the given signing secret.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a token granting userID access to roomID until the TTL
// expires.
func (ts *TokenService) Issue(roomID, userID string) string {
	payload := fmt.Sprintf("%s|%s|%d", roomID, userID, ts.now().Add(ts.ttl).Unix())
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + ts.sign(encoded)
}

// Validate checks the signature and expiry and returns the (room, user)
// pair the token was issued for.
func (ts *TokenService) Validate(token string) (roomID, userID string, err error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(ts.sign(encoded))) {
		return "", "", ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		return "", "", ErrInvalidToken
	}
	expiry, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || ts.now().Unix() > expiry {
		return "", "", ErrInvalidToken
	}
	return parts[0], parts[1], nil
}

func (ts *TokenService) sign(encoded string) string {
	mac := hmac.New(sha256.New, ts.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
