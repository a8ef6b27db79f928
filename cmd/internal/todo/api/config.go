package todoapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"tasktrack/cmd/internal/httpjson"
)

// Config controls task API behavior.
type Config struct {
	// MaxBodyBytes caps create/update request bodies.
	MaxBodyBytes int64

	// ForbiddenStatus is the HTTP status for acting on another user's task.
	// Only 401 and 403 are accepted.
	ForbiddenStatus int
}

// DefaultConfig returns the defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:    httpjson.DefaultMaxBodyBytes,
		ForbiddenStatus: http.StatusUnauthorized,
	}
}

// LoadConfigFromEnv loads task API config from environment variables.
//
// Env surface:
//   - TASKTRACK_TODO_MAX_BODY_BYTES
//   - TASKTRACK_FORBIDDEN_STATUS (401|403)
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := strings.TrimSpace(os.Getenv("TASKTRACK_TODO_MAX_BODY_BYTES")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("TASKTRACK_FORBIDDEN_STATUS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ForbiddenStatus = n
		}
	}
	return cfg.normalized()
}

func (c Config) normalized() Config {
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = httpjson.DefaultMaxBodyBytes
	}
	if c.ForbiddenStatus != http.StatusForbidden {
		c.ForbiddenStatus = http.StatusUnauthorized
	}
	return c
}
