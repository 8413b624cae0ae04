package postgres

import (
	"embed"
	"io/fs"

	"github.com/phrazzld/scry-review/internal/platform/migrate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrations returns the goose source for the PostgreSQL schema.
func Migrations() migrate.Source {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		panic("postgres: embedded migrations missing: " + err.Error())
	}
	return migrate.Source{Dialect: "postgres", FS: sub}
}
