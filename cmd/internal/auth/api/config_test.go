package authapi

import (
	"testing"

	"tasktrack/cmd/internal/httpjson"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("TASKTRACK_AUTH_MAX_BODY_BYTES", "")

	cfg := LoadConfigFromEnv()
	if cfg.MaxBodyBytes != httpjson.DefaultMaxBodyBytes {
		t.Fatalf("MaxBodyBytes=%d want %d", cfg.MaxBodyBytes, httpjson.DefaultMaxBodyBytes)
	}
}

func TestLoadConfigFromEnv_MaxBodyBytes(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "4096", want: 4096},
		{in: " 2048 ", want: 2048},
		{in: "0", want: httpjson.DefaultMaxBodyBytes},
		{in: "-5", want: httpjson.DefaultMaxBodyBytes},
		{in: "lots", want: httpjson.DefaultMaxBodyBytes},
	}

	for _, tc := range tests {
		t.Setenv("TASKTRACK_AUTH_MAX_BODY_BYTES", tc.in)
		if got := LoadConfigFromEnv().MaxBodyBytes; got != tc.want {
			t.Fatalf("TASKTRACK_AUTH_MAX_BODY_BYTES=%q: got %d want %d", tc.in, got, tc.want)
		}
	}
}
