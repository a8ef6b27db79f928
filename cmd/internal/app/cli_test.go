package app

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_Version(t *testing.T) {
	t.Setenv("TASKTRACK_CONFIG", "")
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "tasktrack "+Version) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCLI_Keygen(t *testing.T) {
	t.Setenv("TASKTRACK_CONFIG", "")
	out, err := runCLI(t, "keygen")
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	key := strings.TrimSpace(out)
	raw, err := hex.DecodeString(key)
	if err != nil || len(raw) != 64 {
		t.Fatalf("expected 64-byte hex key, got %q (%v)", key, err)
	}

	t.Setenv("TASKTRACK_PASETO_V4_SECRET_KEY_HEX", key)
	if _, _, err := LoadSecurityConfig(); err != nil {
		t.Fatalf("generated key must load: %v", err)
	}
}

func TestCLI_MigratePrint(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("TASKTRACK_CONFIG", "")
	t.Setenv("TASKTRACK_DB_SCHEMA", "tt_cli")
	t.Setenv("TASKTRACK_DATABASE_URL", "postgres://unused")

	out, err := runCLI(t, "migrate", "--print")
	if err != nil {
		t.Fatalf("migrate --print: %v", err)
	}
	if !strings.Contains(out, `CREATE SCHEMA IF NOT EXISTS "tt_cli"`) || !strings.Contains(out, `"tt_cli"."users"`) {
		t.Fatalf("unexpected ddl: %q", out)
	}
}

func TestCLI_MigrateRequiresDatabaseURL(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("TASKTRACK_CONFIG", "")

	if _, err := runCLI(t, "migrate"); err == nil || !strings.Contains(err.Error(), "TASKTRACK_DATABASE_URL") {
		t.Fatalf("expected database url error, got %v", err)
	}
}

func TestCLI_UnknownConfigFile(t *testing.T) {
	if _, err := runCLI(t, "--config", "/definitely/missing.yaml", "version"); err == nil {
		t.Fatalf("expected config file error")
	}
}
