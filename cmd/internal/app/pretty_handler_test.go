package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelTag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level slog.Level
		want  string
	}{
		{level: slog.LevelDebug, want: "[DEBUG]"},
		{level: slog.LevelInfo, want: "[INFO]"},
		{level: slog.LevelWarn, want: "[WARN]"},
		{level: slog.LevelError, want: "[ERROR]"},
	}
	for _, tc := range cases {
		if got := levelTag(tc.level, false); got != tc.want {
			t.Fatalf("levelTag(%v)=%q want=%q", tc.level, got, tc.want)
		}
	}
	if got := levelTag(slog.LevelError, true); got != ansiRed+"[ERROR]"+ansiReset {
		t.Fatalf("colored tag=%q", got)
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":          `""`,
		"plain":     "plain",
		"two words": `"two words"`,
		"k=v":       `"k=v"`,
	}
	for in, want := range cases {
		if got := quoteIfNeeded(in); got != want {
			t.Fatalf("quoteIfNeeded(%q)=%q want=%q", in, got, want)
		}
	}
}

func TestPrettyHandler_GroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, nil, false)).With("component", "todo").WithGroup("req")
	log.Info("done", "id", "abc", slog.Group("user", "name", "alice smith"))

	out := buf.String()
	for _, want := range []string{"component=todo", "req.id=abc", `req.user.name="alice smith"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected color codes: %q", out)
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := newPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info must be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error must be enabled at warn level")
	}
}
