// Package token holds the secret-handling primitives shared by the token managers.
//
//   - SecretFromEnv loads signing secrets with a minimum size policy.
//   - Fingerprint derives a short, non-reversible label for a bearer token so that
//     logs can correlate requests without ever carrying the token itself.
package token
