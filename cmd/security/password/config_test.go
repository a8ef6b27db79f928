package password

import (
	"os"
	"testing"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"TASKTRACK_PASSWORD_ALGORITHM",
		"TASKTRACK_PASSWORD_MIN_LEN",
		"TASKTRACK_PASSWORD_MAX_LEN",
		"TASKTRACK_PASSWORD_REJECT_VERY_WEAK",
		"TASKTRACK_ARGON2_MEMORY_KIB",
		"TASKTRACK_ARGON2_ITERATIONS",
		"TASKTRACK_ARGON2_PARALLELISM",
		"TASKTRACK_ARGON2_SALT_LEN",
		"TASKTRACK_ARGON2_KEY_LEN",
		"TASKTRACK_BCRYPT_COST",
	} {
		_ = os.Unsetenv(k)
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	def := DefaultConfig()
	if cfg.Algorithm != AlgorithmArgon2id {
		t.Fatalf("algorithm=%q want argon2id", cfg.Algorithm)
	}
	if cfg.Policy.MinLength != def.Policy.MinLength || cfg.Policy.MinLength != 6 {
		t.Fatalf("min length mismatch: %d", cfg.Policy.MinLength)
	}
	if cfg.Params.MemoryKiB != def.Params.MemoryKiB {
		t.Fatalf("memory mismatch")
	}
}

func TestFromEnv_Override(t *testing.T) {
	t.Setenv("TASKTRACK_PASSWORD_MIN_LEN", "10")
	t.Setenv("TASKTRACK_PASSWORD_MAX_LEN", "200")
	t.Setenv("TASKTRACK_PASSWORD_REJECT_VERY_WEAK", "true")
	t.Setenv("TASKTRACK_ARGON2_MEMORY_KIB", "32768")
	t.Setenv("TASKTRACK_ARGON2_ITERATIONS", "4")
	t.Setenv("TASKTRACK_ARGON2_PARALLELISM", "2")
	t.Setenv("TASKTRACK_ARGON2_SALT_LEN", "24")
	t.Setenv("TASKTRACK_ARGON2_KEY_LEN", "32")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	if cfg.Policy.MinLength != 10 || cfg.Policy.MaxLength != 200 || !cfg.Policy.RejectVeryWeak {
		t.Fatalf("policy override failed: %+v", cfg.Policy)
	}
	if cfg.Params.MemoryKiB != 32768 || cfg.Params.Iterations != 4 || cfg.Params.Parallelism != 2 {
		t.Fatalf("argon2 override failed: %+v", cfg.Params)
	}
	if cfg.Params.SaltLength != 24 || cfg.Params.KeyLength != 32 {
		t.Fatalf("len override failed: %+v", cfg.Params)
	}
}

func TestFromEnv_Bcrypt(t *testing.T) {
	t.Setenv("TASKTRACK_PASSWORD_ALGORITHM", "BCRYPT")
	t.Setenv("TASKTRACK_BCRYPT_COST", "5")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.Algorithm != AlgorithmBcrypt || cfg.BcryptCost != 5 {
		t.Fatalf("bcrypt override failed: %+v", cfg)
	}
	if cfg.Policy.MaxLength != 72 {
		t.Fatalf("max len=%d want 72 for bcrypt", cfg.Policy.MaxLength)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"min greater than max", map[string]string{"TASKTRACK_PASSWORD_MIN_LEN": "20", "TASKTRACK_PASSWORD_MAX_LEN": "10"}},
		{"unknown algorithm", map[string]string{"TASKTRACK_PASSWORD_ALGORITHM": "md5"}},
		{"bcrypt cost too low", map[string]string{"TASKTRACK_BCRYPT_COST": "2"}},
		{"bad bool", map[string]string{"TASKTRACK_PASSWORD_REJECT_VERY_WEAK": "maybe"}},
		{"parallelism too high", map[string]string{"TASKTRACK_ARGON2_PARALLELISM": "65"}},
		{"memory not a number", map[string]string{"TASKTRACK_ARGON2_MEMORY_KIB": "lots"}},
		{"bcrypt min above cap", map[string]string{"TASKTRACK_PASSWORD_ALGORITHM": "bcrypt", "TASKTRACK_PASSWORD_MIN_LEN": "80"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFromEnv_BlankIsIgnored(t *testing.T) {
	t.Setenv("TASKTRACK_ARGON2_ITERATIONS", "  ")
	t.Setenv("TASKTRACK_PASSWORD_ALGORITHM", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.Params.Iterations != DefaultConfig().Params.Iterations || cfg.Algorithm != AlgorithmArgon2id {
		t.Fatalf("blank values should keep defaults: %+v", cfg)
	}
}
