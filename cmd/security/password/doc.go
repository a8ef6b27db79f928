// Package password provides password hashing and verification utilities for tasktrack.
//
// New hashes are Argon2id in a PHC-like encoded string (the per-record salt
// lives inside the encoded value). bcrypt can be selected for new hashes and is
// always accepted on Verify, so rows imported from bcrypt-based deployments keep working.
//
// Security notes:
// - Hash strings are treated as untrusted input during Verify and are validated accordingly.
// - Verification refuses Argon2id hashes with parameters that exceed reasonable bounds.
package password
