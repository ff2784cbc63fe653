package database

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/pressly/goose/v3"
)

// goose keeps its base FS and dialect in package globals
var migrateMux sync.Mutex

// Migrate applies all embedded migrations that have not run yet. Every
// migration only creates missing tables, so running it against a database
// created by an older deployment (without the goose version table) is safe.
func (db *Database) Migrate(ctx context.Context) error {
	migrateMux.Lock()
	defer migrateMux.Unlock()

	goose.SetBaseFS(EmbeddedMigrationsFS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(log.New(log.Writer(), "[DATABASE] goose: ", log.Flags()))

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.mainDB, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db.mainDB)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Printf("[DATABASE] Schema at version %d", version)
	return nil
}
