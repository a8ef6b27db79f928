// Package dbschema holds the PostgreSQL schema shared by the user and task stores.
package dbschema

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSchema is the schema used when none is configured.
const DefaultSchema = "tasktrack"

//go:embed schema.sql
var schemaSQL string

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdent reports whether s is a legal unquoted PostgreSQL identifier.
func ValidIdent(s string) bool {
	return identRe.MatchString(s)
}

// SQL renders the DDL for schema.
func SQL(schema string) (string, error) {
	schema = strings.TrimSpace(schema)
	if !ValidIdent(schema) {
		return "", fmt.Errorf("dbschema: invalid schema identifier %q", schema)
	}
	return strings.ReplaceAll(schemaSQL, "{{schema}}", pgx.Identifier{schema}.Sanitize()), nil
}

// Apply creates the schema, tables and indexes if they do not exist.
// It is idempotent.
func Apply(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if pool == nil {
		return fmt.Errorf("dbschema: nil pool")
	}
	ddl, err := SQL(schema)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("dbschema: apply: %w", err)
	}
	return nil
}
