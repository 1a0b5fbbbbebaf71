// Package token provides digest primitives for refresh-token storage.
//
// The server never persists a refresh token in plaintext: only a stable
// 64-char hex digest is stored and compared. With a configured key the digest
// is HMAC-SHA256(token, key); without one it falls back to SHA-256(token),
// which is acceptable for development setups only.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// ErrKeyTooShort is returned by NewDigester for keys under 32 bytes.
var ErrKeyTooShort = errors.New("token digest key too short")

// Digester computes storage digests for refresh tokens.
type Digester struct {
	key []byte
}

// NewDigester builds a Digester. An empty key selects plain SHA-256;
// a non-empty key must be at least 32 bytes and selects HMAC-SHA256.
func NewDigester(key []byte) (Digester, error) {
	if len(key) > 0 && len(key) < 32 {
		return Digester{}, ErrKeyTooShort
	}
	return Digester{key: key}, nil
}

// Digest returns the hex digest stored server-side for a refresh token.
func (d Digester) Digest(token string) string {
	if len(d.key) == 0 {
		sum := sha256.Sum256([]byte(token))
		return hex.EncodeToString(sum[:])
	}
	m := hmac.New(sha256.New, d.key)
	_, _ = m.Write([]byte(token))
	return hex.EncodeToString(m.Sum(nil))
}

// Equal compares two hex digests in constant time.
// Both inputs are expected to be 64 hex chars; anything else is a mismatch.
func Equal(a, b string) bool {
	if len(a) != 64 || len(b) != 64 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
