package repo

import (
	"context"
	_ "embed"
	"strings"

	"hansard/internal/modkit/repokit"
	perr "hansard/internal/platform/errors"
)

//go:embed schema.sql
var schemaSQL string

// Statements splits the embedded schema into single statements
func Statements() []string {
	var out []string
	for _, stmt := range strings.Split(schemaSQL, ";") {
		var keep []string
		for _, line := range strings.Split(stmt, "\n") {
			if t := strings.TrimSpace(line); t != "" && !strings.HasPrefix(t, "--") {
				keep = append(keep, line)
			}
		}
		if len(keep) > 0 {
			out = append(out, strings.Join(keep, "\n"))
		}
	}
	return out
}

// EnsureSchema creates the ingest tables when missing. Existing tables are left as they are
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	for _, stmt := range Statements() {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return perr.FromPostgres(err, "apply schema")
		}
	}
	return nil
}
