package app

import (
	"fmt"
	"strings"
	"time"

	"tasktrack/cmd/identity"
	"tasktrack/cmd/internal/dbschema"
)

// StoreKind selects the persistence backend.
type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StorePostgres StoreKind = "postgres"
	StoreRedis    StoreKind = "redis"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int

	// APIPrefix mirrors every route under this path. "" disables the mirror;
	// in the environment that is spelled TASKTRACK_API_PREFIX=none.
	APIPrefix string

	Store StoreKind

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	DBSchema    string
	AutoMigrate bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	ReadinessTimeout time.Duration
	MetricsEnabled   bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		HTTPAddr:  EnvString("TASKTRACK_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("TASKTRACK_LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(EnvString("TASKTRACK_LOG_FORMAT", "json")),

		ReadHeaderTimeout: EnvDuration("TASKTRACK_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("TASKTRACK_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("TASKTRACK_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("TASKTRACK_HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   EnvDuration("TASKTRACK_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxHeaderBytes:    EnvInt("TASKTRACK_HTTP_MAX_HEADER_BYTES", 1<<20),

		APIPrefix: EnvString("TASKTRACK_API_PREFIX", "/api"),

		DatabaseURL: EnvString("TASKTRACK_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("TASKTRACK_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("TASKTRACK_DB_MIN_CONNS", 0),
		DBSchema:    EnvString("TASKTRACK_DB_SCHEMA", dbschema.DefaultSchema),
		AutoMigrate: EnvBool("TASKTRACK_AUTO_MIGRATE", false),

		RedisAddr:     EnvString("TASKTRACK_REDIS_ADDR", ""),
		RedisPassword: EnvString("TASKTRACK_REDIS_PASSWORD", ""),
		RedisDB:       int(EnvInt32("TASKTRACK_REDIS_DB", 0)),
		RedisPrefix:   EnvString("TASKTRACK_REDIS_PREFIX", identity.DefaultRedisPrefix),

		ReadinessTimeout: EnvDuration("TASKTRACK_READINESS_TIMEOUT", 2*time.Second),
		MetricsEnabled:   EnvBool("TASKTRACK_METRICS_ENABLED", true),

		CORSAllowedOrigins:   EnvList("TASKTRACK_CORS_ALLOWED_ORIGINS", nil),
		CORSAllowCredentials: EnvBool("TASKTRACK_CORS_ALLOW_CREDENTIALS", false),
		CORSMaxAgeSeconds:    EnvInt("TASKTRACK_CORS_MAX_AGE_SECONDS", 600),
	}

	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	if strings.EqualFold(cfg.APIPrefix, "none") {
		cfg.APIPrefix = ""
	}

	store := strings.ToLower(EnvString("TASKTRACK_STORE", ""))
	switch StoreKind(store) {
	case "":
		cfg.Store = StoreMemory
		if cfg.DatabaseURL != "" {
			cfg.Store = StorePostgres
		}
	case StoreMemory, StorePostgres, StoreRedis:
		cfg.Store = StoreKind(store)
	default:
		return Config{}, fmt.Errorf("TASKTRACK_STORE: unknown store %q", store)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("TASKTRACK_STORE=postgres requires TASKTRACK_DATABASE_URL")
		}
		if !dbschema.ValidIdent(c.DBSchema) {
			return fmt.Errorf("TASKTRACK_DB_SCHEMA: invalid identifier %q", c.DBSchema)
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("TASKTRACK_STORE=redis requires TASKTRACK_REDIS_ADDR")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	switch c.LogFormat {
	case "json", "pretty", "text":
	default:
		return fmt.Errorf("TASKTRACK_LOG_FORMAT: unknown format %q", c.LogFormat)
	}
	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("TASKTRACK_API_PREFIX: must start with /, got %q", c.APIPrefix)
	}
	return nil
}
