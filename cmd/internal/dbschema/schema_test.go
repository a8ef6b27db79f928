package dbschema

import (
	"strings"
	"testing"
)

func TestSQL_QuotesSchema(t *testing.T) {
	ddl, err := SQL("tt_test")
	if err != nil {
		t.Fatalf("SQL: %v", err)
	}
	if strings.Contains(ddl, "{{schema}}") {
		t.Fatalf("placeholder left in DDL")
	}
	if !strings.Contains(ddl, `"tt_test"."tasks"`) {
		t.Fatalf("expected quoted schema-qualified table, got:\n%s", ddl)
	}
}

func TestSQL_RejectsBadIdentifiers(t *testing.T) {
	for _, s := range []string{"", "1abc", "a-b", `x"; DROP TABLE users; --`} {
		if _, err := SQL(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}
