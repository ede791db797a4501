// Package db embeds the SQL schema migrations.
package db

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is a single forward schema step.
type Migration struct {
	Name string
	SQL  string
}

// Up returns the forward migrations in lexical (apply) order.
func Up() ([]Migration, error) {
	names, err := fs.Glob(migrationFS, "migrations/*_*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		payload, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: name, SQL: string(payload)})
	}
	return out, nil
}
