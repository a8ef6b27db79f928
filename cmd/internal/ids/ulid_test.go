package ids

import (
	"strings"
	"testing"
	"time"
)

func TestNewULID_SortsByTime(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	a, err := NewULID(t0)
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	b, err := NewULID(t0.Add(time.Millisecond))
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("unexpected lengths %d %d", len(a), len(b))
	}
	if a >= b {
		t.Fatalf("expected %q < %q", a, b)
	}
}

func TestValidAndCanonical(t *testing.T) {
	id, err := NewULID(time.Now())
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}

	cases := []struct {
		in    string
		valid bool
		want  string
	}{
		{in: id, valid: true, want: id},
		{in: strings.ToLower(id), valid: true, want: id},
		{in: "not-an-id", valid: false, want: ""},
		{in: "", valid: false, want: ""},
		{in: id + "X", valid: false, want: ""},
	}
	for _, tc := range cases {
		if got := Valid(tc.in); got != tc.valid {
			t.Fatalf("Valid(%q)=%v want %v", tc.in, got, tc.valid)
		}
		if got := Canonical(tc.in); got != tc.want {
			t.Fatalf("Canonical(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}
