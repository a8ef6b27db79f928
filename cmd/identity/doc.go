// Package identity owns user accounts: registration, credential checks and
// lookups by id or email.
//
// Users are persisted through Store (in-memory, PostgreSQL or Redis). Username
// and email are each unique across all users, compared exactly after trimming
// surrounding whitespace. Plain passwords never reach a Store; only the encoded
// hash produced by the configured PasswordHasher does.
package identity
