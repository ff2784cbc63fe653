package database

import (
	"embed"
)

//go:embed migrations/*.sql
var EmbeddedMigrationsFS embed.FS

// migrationsDir is the directory inside EmbeddedMigrationsFS holding the
// goose migration files (NNNN_main_description.sql).
const migrationsDir = "migrations"
