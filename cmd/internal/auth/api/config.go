package authapi

import (
	"os"
	"strconv"
	"strings"

	"tasktrack/cmd/internal/httpjson"
)

// Config controls auth API behavior.
type Config struct {
	// MaxBodyBytes caps register/login request bodies.
	MaxBodyBytes int64
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
//
// Env surface:
//   - TASKTRACK_AUTH_MAX_BODY_BYTES
func LoadConfigFromEnv() Config {
	return Config{
		MaxBodyBytes: envInt64("TASKTRACK_AUTH_MAX_BODY_BYTES", httpjson.DefaultMaxBodyBytes),
	}
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
