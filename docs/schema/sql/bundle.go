// Package sqldocs exposes the registry storage DDL bundles directly from the
// docs tree. The storage drivers execute these bundles verbatim, so the docs
// and the runtime schema cannot drift apart.
package sqldocs

import (
	_ "embed"
	"strings"
)

// SQLite contains the registry snapshot DDL for the embedded SQLite driver.
//
//go:embed sqlite.sql
var SQLite string

// Postgres contains the registry snapshot DDL for the PostgreSQL driver.
//
//go:embed postgres.sql
var Postgres string

// Statements splits a bundle into individually executable statements,
// stripping SQL line comments and blank fragments.
func Statements(bundle string) []string {
	var out []string
	for _, chunk := range strings.Split(bundle, ";") {
		var b strings.Builder
		for _, line := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if stmt := strings.TrimSpace(b.String()); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
