package password

import (
	"strings"
	"testing"
)

// fastConfig keeps argon2 cheap so the suite stays quick.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

func TestHashAndVerify_OK(t *testing.T) {
	cfg := fastConfig()

	h, err := cfg.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(h, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding: %q", h)
	}

	ok, err := cfg.Verify(h, "secret1")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	cfg := fastConfig()

	a, err := cfg.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := cfg.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct encodings for the same password")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	cfg := fastConfig()

	h, err := cfg.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := cfg.Verify(h, "wrong password")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestBcrypt_HashAndVerify(t *testing.T) {
	cfg := fastConfig()
	cfg.Algorithm = AlgorithmBcrypt
	cfg.BcryptCost = 4

	h, err := cfg.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(h, "$2a$04$") {
		t.Fatalf("unexpected bcrypt encoding: %q", h)
	}

	// An argon2id-configured verifier still accepts bcrypt rows.
	argon := fastConfig()
	ok, err := argon.Verify(h, "secret1")
	if err != nil || !ok {
		t.Fatalf("Verify ok=%v err=%v", ok, err)
	}
	ok, err = argon.Verify(h, "secret2")
	if err != nil || ok {
		t.Fatalf("Verify mismatch ok=%v err=%v", ok, err)
	}
}

func TestValidate_MinMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.MinLength = 12
	cfg.Policy.MaxLength = 16

	if err := cfg.Validate("short"); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	if err := cfg.Validate("this password is definitely too long"); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}

	if err := cfg.Validate("goodpassw0rd!"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	cfg := fastConfig()

	for _, h := range []string{
		"not-a-hash",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHQ$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
		"$2b$04$tooshort",
	} {
		ok, err := cfg.Verify(h, "whatever")
		if err != ErrInvalidHash {
			t.Fatalf("%q: expected ErrInvalidHash, got %v", h, err)
		}
		if ok {
			t.Fatalf("%q: expected false", h)
		}
	}
}

func TestVerify_RefusesOversizedParams(t *testing.T) {
	big := fastConfig()
	big.Params.MemoryKiB = 64 * 1024
	h, err := big.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	small := fastConfig()
	if _, err := small.Verify(h, "secret1"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestPolicy_RejectVeryWeak(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.RejectVeryWeak = true
	cfg.Policy.MinLength = 6

	for _, pw := range []string{"password", "11111111", "123456", "aaaaaa"} {
		if err := cfg.Validate(pw); err != ErrWeakPassword {
			t.Fatalf("%q: expected ErrWeakPassword, got %v", pw, err)
		}
	}
	if err := cfg.Validate("a-very-ok-pass"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestPolicy_BcryptByteCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Algorithm = AlgorithmBcrypt
	cfg.BcryptCost = 4
	cfg.Policy.MaxLength = 72

	// 40 characters, 80 bytes.
	pw := strings.Repeat("é", 40)
	if err := cfg.Validate(pw); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}

	cfg.Algorithm = AlgorithmArgon2id
	if err := cfg.Validate(pw); err != nil {
		t.Fatalf("argon2id has no byte cap, got %v", err)
	}
}
