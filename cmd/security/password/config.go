package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm selects the scheme used for new hashes.
type Algorithm string

const (
	AlgorithmArgon2id Algorithm = "argon2id"
	AlgorithmBcrypt   Algorithm = "bcrypt"
)

// Argon2idParams controls Argon2id hashing cost. MemoryKiB is in KiB as
// argon2.IDKey expects.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy bounds accepted passwords.
type Policy struct {
	MinLength      int
	MaxLength      int
	RejectVeryWeak bool
}

// Config is the single configuration surface for this package.
type Config struct {
	Algorithm  Algorithm
	Params     Argon2idParams
	BcryptCost int
	Policy     Policy
}

// DefaultConfig returns argon2id with a 64 MiB cost and a 6 character minimum.
func DefaultConfig() Config {
	threads := min(max(runtime.NumCPU(), 1), 4)

	return Config{
		Algorithm: AlgorithmArgon2id,
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4].
			SaltLength:  16,
			KeyLength:   32,
		},
		BcryptCost: bcrypt.DefaultCost,
		Policy:     Policy{MinLength: 6, MaxLength: 256},
	}
}

// knob is one bounded integer setting read from the environment.
type knob struct {
	key      string
	min, max uint64
	set      func(*Config, uint64)
}

var knobs = []knob{
	{"TASKTRACK_PASSWORD_MIN_LEN", 1, 1024, func(c *Config, n uint64) { c.Policy.MinLength = int(n) }},
	{"TASKTRACK_PASSWORD_MAX_LEN", 1, 4096, func(c *Config, n uint64) { c.Policy.MaxLength = int(n) }},
	{"TASKTRACK_ARGON2_MEMORY_KIB", 8 * 1024, 1024 * 1024, func(c *Config, n uint64) { c.Params.MemoryKiB = uint32(n) }},
	{"TASKTRACK_ARGON2_ITERATIONS", 1, 20, func(c *Config, n uint64) { c.Params.Iterations = uint32(n) }},
	{"TASKTRACK_ARGON2_PARALLELISM", 1, 64, func(c *Config, n uint64) { c.Params.Parallelism = uint8(n) }},
	{"TASKTRACK_ARGON2_SALT_LEN", 8, 64, func(c *Config, n uint64) { c.Params.SaltLength = uint32(n) }},
	{"TASKTRACK_ARGON2_KEY_LEN", 16, 64, func(c *Config, n uint64) { c.Params.KeyLength = uint32(n) }},
	{"TASKTRACK_BCRYPT_COST", uint64(bcrypt.MinCost), uint64(bcrypt.MaxCost), func(c *Config, n uint64) { c.BcryptCost = int(n) }},
}

// FromEnv overlays DefaultConfig with TASKTRACK_PASSWORD_ALGORITHM,
// TASKTRACK_PASSWORD_REJECT_VERY_WEAK and the bounded integer knobs above.
// Blank variables are ignored. Out-of-range values are errors.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := env("TASKTRACK_PASSWORD_ALGORITHM"); v != "" {
		a, err := ParseAlgorithm(v)
		if err != nil {
			return Config{}, fmt.Errorf("TASKTRACK_PASSWORD_ALGORITHM: %w", err)
		}
		cfg.Algorithm = a
	}
	if v := env("TASKTRACK_PASSWORD_REJECT_VERY_WEAK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("TASKTRACK_PASSWORD_REJECT_VERY_WEAK: invalid boolean %q", v)
		}
		cfg.Policy.RejectVeryWeak = b
	}

	for _, k := range knobs {
		v := env(k.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("%s: not an unsigned integer", k.key)
		}
		if n < k.min || n > k.max {
			return Config{}, fmt.Errorf("%s: out of range [%d..%d]", k.key, k.min, k.max)
		}
		k.set(&cfg, n)
	}

	if err := cfg.settle(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// settle caps bcrypt's max length at bcryptMaxBytes and rejects min > max.
func (c *Config) settle() error {
	if c.Algorithm == AlgorithmBcrypt && c.Policy.MaxLength > bcryptMaxBytes {
		c.Policy.MaxLength = bcryptMaxBytes
	}
	if c.Policy.MinLength > c.Policy.MaxLength {
		return fmt.Errorf("password policy invalid: min_len(%d) > max_len(%d)", c.Policy.MinLength, c.Policy.MaxLength)
	}
	return nil
}

// ParseAlgorithm maps a config string to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", AlgorithmArgon2id:
		return AlgorithmArgon2id, nil
	case AlgorithmBcrypt:
		return AlgorithmBcrypt, nil
	default:
		return "", ErrUnknownAlgorithm
	}
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }
