// Package session issues and verifies the bearer tokens that identify callers.
//
// Tokens are stateless: a token carries the user id, its issue time and an
// expiry exactly TokenTTL later, and is trusted on signature and expiry alone.
// There is no refresh or revocation; rotating the signing key invalidates every
// outstanding token.
//
// Two wire formats are supported behind TokenManager: PASETO v4.public
// (default) and HS256 JWT.
package session
