package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"tasktrack/cmd/internal/auth/session"
	"tasktrack/cmd/security/password"
	"tasktrack/cmd/security/token"
)

// LoadSecurityConfig loads the token and password settings and fails fast with
// a message naming the variable to fix. The server never starts without a
// signing key.
func LoadSecurityConfig() (session.Config, password.Config, error) {
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return session.Config{}, password.Config{}, explainSessionConfig(err)
	}
	pwCfg, err := password.FromEnv()
	if err != nil {
		return session.Config{}, password.Config{}, fmt.Errorf("security policy: %w", err)
	}
	return sessCfg, pwCfg, nil
}

func explainSessionConfig(err error) error {
	if !errors.Is(err, session.ErrConfig) {
		return err
	}
	format := strings.ToLower(strings.TrimSpace(os.Getenv("TASKTRACK_TOKEN_FORMAT")))
	switch session.Format(format) {
	case "", session.FormatPaseto:
		if strings.TrimSpace(os.Getenv("TASKTRACK_PASETO_V4_SECRET_KEY_HEX")) == "" {
			return errors.New("security policy: TASKTRACK_PASETO_V4_SECRET_KEY_HEX is missing (generate one with `tasktrack keygen`)")
		}
		return errors.New("security policy: TASKTRACK_PASETO_V4_SECRET_KEY_HEX is not a valid v4 secret key")
	case session.FormatJWT:
		_, serr := token.SecretFromEnv("TASKTRACK_JWT_SECRET", 32)
		switch {
		case errors.Is(serr, token.ErrSecretMissing):
			return errors.New("security policy: TASKTRACK_TOKEN_FORMAT=jwt but TASKTRACK_JWT_SECRET is missing")
		case errors.Is(serr, token.ErrSecretTooShort):
			return errors.New("security policy: TASKTRACK_TOKEN_FORMAT=jwt but TASKTRACK_JWT_SECRET is too short (min 32 bytes)")
		}
	default:
		return fmt.Errorf("security policy: unknown TASKTRACK_TOKEN_FORMAT %q", format)
	}
	return fmt.Errorf("security policy: %w", err)
}
