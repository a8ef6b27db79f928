package token

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
)

// fingerprintLen is the number of hex chars kept from the digest.
const fingerprintLen = 16

// HashSHA256Hex returns a SHA-256 hex digest of s.
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns a short stable label for a bearer token, safe for logs.
// Empty input yields "".
func Fingerprint(tok string) string {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return ""
	}
	return HashSHA256Hex(tok)[:fingerprintLen]
}

// SecretFromEnv returns the trimmed secret stored in env var key, enforcing a minimum byte length.
// If the env var is missing/blank -> ErrSecretMissing.
// If too short -> ErrSecretTooShort.
func SecretFromEnv(key string, minBytes int) ([]byte, error) {
	return ParseSecret(os.Getenv(key), minBytes)
}

// ParseSecret applies the SecretFromEnv policy to an already loaded value.
func ParseSecret(raw string, minBytes int) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrSecretMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrSecretTooShort
	}
	return b, nil
}
