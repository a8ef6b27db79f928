package password

import "testing"

func benchConfigs() map[string]Config {
	argon := DefaultConfig()

	bc := DefaultConfig()
	bc.Algorithm = AlgorithmBcrypt
	bc.Policy.MaxLength = 72

	return map[string]Config{"argon2id": argon, "bcrypt": bc}
}

// BenchmarkLogin measures one register hash plus one login verify, the cost
// a client pays per account.
func BenchmarkLogin(b *testing.B) {
	const pw = "buy milk and eggs"

	for name, cfg := range benchConfigs() {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				h, err := cfg.Hash(pw)
				if err != nil {
					b.Fatalf("Hash: %v", err)
				}
				if ok, err := cfg.Verify(h, pw); err != nil || !ok {
					b.Fatalf("Verify: ok=%v err=%v", ok, err)
				}
			}
		})
	}
}
