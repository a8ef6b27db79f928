// Package ids provides the ULID primitives shared by users and tasks.
package ids

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID returns a new ULID string (26 chars).
// ULIDs sort lexicographically by creation time.
func NewULID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Valid reports whether s is a canonical ULID string.
// Lowercase input is accepted; callers should pass it through Canonical before storage lookups.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(strings.TrimSpace(s))
	return err == nil
}

// Canonical returns the upper-case form used for storage, or "" when s is not a ULID.
func Canonical(s string) string {
	id, err := ulid.ParseStrict(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return id.String()
}
