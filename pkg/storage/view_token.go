package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ViewTokenSigner creates and validates signed file-view tokens. Browsers
// render attachment URLs in <img> tags and new windows, where no
// Authorization header is available, so view links embed a signed token
// instead.
type ViewTokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewViewTokenSigner constructs a signer with the provided secret and TTL.
func NewViewTokenSigner(secret string, ttl time.Duration) *ViewTokenSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ViewTokenSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate returns a signed token bound to the upload id.
func (s *ViewTokenSigner) Generate(uploadID string) (string, time.Time, error) {
	if uploadID == "" {
		return "", time.Time{}, fmt.Errorf("uploadID required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	payload := fmt.Sprintf("%s|%d", uploadID, expiresAt.Unix())
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	token := strings.Join([]string{fmt.Sprintf("%d", expiresAt.Unix()), signature}, ".")
	return token, expiresAt, nil
}

// Validate checks a token against the upload id it should be bound to.
func (s *ViewTokenSigner) Validate(uploadID, token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid token format")
	}
	ts := parts[0]
	signature := parts[1]

	var expUnix int64
	if _, err := fmt.Sscanf(ts, "%d", &expUnix); err != nil {
		return fmt.Errorf("invalid timestamp")
	}

	payload := fmt.Sprintf("%s|%s", uploadID, ts)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("invalid token signature")
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return fmt.Errorf("token expired")
	}
	return nil
}
