package session

import (
	"os"
	"strings"
	"time"

	"tasktrack/cmd/security/token"
)

// TokenTTL is the fixed lifetime of an identity token.
const TokenTTL = 30 * 24 * time.Hour

// Format selects the token wire format.
type Format string

const (
	FormatPaseto Format = "paseto"
	FormatJWT    Format = "jwt"
)

// minJWTSecretBytes is the HS256 secret floor.
const minJWTSecretBytes = 32

// Config defines runtime configuration for token issuance.
type Config struct {
	// Format picks the TokenManager implementation.
	Format Format

	// Issuer is the value set in the "iss" claim.
	Issuer string

	// ClockSkew tolerates issuers whose clock runs slightly ahead.
	// It never extends a token past its expiry.
	ClockSkew time.Duration

	// PasetoV4SecretKeyHex is the hex-encoded Ed25519 secret key
	// used to sign PASETO v4.public tokens.
	PasetoV4SecretKeyHex string

	// JWTSecret is the HS256 signing secret.
	JWTSecret []byte
}

// DefaultConfig returns the defaults; a signing key must still be supplied.
func DefaultConfig() Config {
	return Config{
		Format:    FormatPaseto,
		Issuer:    "tasktrack",
		ClockSkew: 30 * time.Second,
	}
}

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Env surface:
//   - TASKTRACK_TOKEN_FORMAT (paseto|jwt)
//   - TASKTRACK_AUTH_ISSUER
//   - TASKTRACK_AUTH_CLOCK_SKEW
//   - TASKTRACK_PASETO_V4_SECRET_KEY_HEX (required for paseto)
//   - TASKTRACK_JWT_SECRET (required for jwt, >= 32 bytes)
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("TASKTRACK_TOKEN_FORMAT")); v != "" {
		cfg.Format = Format(strings.ToLower(v))
	}
	if v := strings.TrimSpace(os.Getenv("TASKTRACK_AUTH_ISSUER")); v != "" {
		cfg.Issuer = v
	}
	if v := os.Getenv("TASKTRACK_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	switch cfg.Format {
	case FormatPaseto:
		cfg.PasetoV4SecretKeyHex = strings.TrimSpace(os.Getenv("TASKTRACK_PASETO_V4_SECRET_KEY_HEX"))
	case FormatJWT:
		secret, err := token.SecretFromEnv("TASKTRACK_JWT_SECRET", minJWTSecretBytes)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.JWTSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected format has usable key material.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Issuer) == "" || c.ClockSkew < 0 {
		return ErrConfig
	}
	switch c.Format {
	case FormatPaseto:
		if c.PasetoV4SecretKeyHex == "" {
			return ErrConfig
		}
	case FormatJWT:
		if _, err := token.ParseSecret(string(c.JWTSecret), minJWTSecretBytes); err != nil {
			return ErrConfig
		}
	default:
		return ErrConfig
	}
	return nil
}
