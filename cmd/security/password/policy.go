package password

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// bcryptMaxBytes is the longest input bcrypt accepts.
const bcryptMaxBytes = 72

// commonPasswords is checked case-insensitively when RejectVeryWeak is set.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {},
	"123456": {}, "1234567": {}, "12345678": {}, "123456789": {},
	"qwerty": {}, "qwerty123": {}, "abc123": {}, "letmein": {},
	"iloveyou": {}, "welcome": {}, "secret": {}, "todolist": {},
}

// Validate checks a plaintext password against the policy.
// Length is counted in characters; bcrypt additionally caps the byte length.
func (c Config) Validate(password string) error {
	n := utf8.RuneCountInString(password)
	if n < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if n > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	if c.Algorithm == AlgorithmBcrypt && len(password) > bcryptMaxBytes {
		return ErrPasswordTooLong
	}
	if c.Policy.RejectVeryWeak && isVeryWeak(password) {
		return ErrWeakPassword
	}
	return nil
}

// isVeryWeak flags blank, single-character, short numeric and well known passwords.
// It is not an entropy estimator.
func isVeryWeak(pw string) bool {
	s := strings.TrimSpace(pw)
	if s == "" {
		return true
	}
	if _, ok := commonPasswords[strings.ToLower(s)]; ok {
		return true
	}

	runes := []rune(s)
	repeated, digits := true, true
	for _, r := range runes {
		if r != runes[0] {
			repeated = false
		}
		if !unicode.IsDigit(r) {
			digits = false
		}
	}
	return repeated || (digits && len(runes) < 12)
}
