// Package database provides the sqlite3 persistence store for go-pugsite
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
)

// Database owns the sqlite3 file holding users, contact messages and
// newsletter subscribers.
type Database struct {
	mainDB   *sql.DB
	dbconfig *DBConfig
	stamps   *stampClock

	mux    sync.Mutex
	closed bool
}

// DBConfig represents database configuration
type DBConfig struct {
	// Path to the sqlite3 file, created on first run
	Path string

	// Upper bound of simultaneously open connections. Idle connections are
	// never kept: every operation opens its own and closes it when done.
	MaxOpenConns int

	// How long a connection waits on a locked database before failing
	BusyTimeout time.Duration

	WALMode  bool   // Write-Ahead Logging
	SyncMode string // OFF, NORMAL, FULL
}

// DefaultDBConfig returns default database configuration
func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		Path:         "./database.db",
		MaxOpenConns: 16,
		BusyTimeout:  5 * time.Second,
		WALMode:      true,
		SyncMode:     "NORMAL",
	}
}

// OpenDatabase opens (creating if needed) the database file and applies all
// pending schema migrations. Safe to call on every start: existing data is kept.
func OpenDatabase(ctx context.Context, dbconfig *DBConfig) (*Database, error) {
	if dbconfig == nil {
		dbconfig = DefaultDBConfig()
	}
	if dbconfig.Path == "" {
		return nil, fmt.Errorf("database path is not set")
	}

	if err := prepareDBFile(dbconfig.Path); err != nil {
		return nil, err
	}

	db := &Database{
		dbconfig: dbconfig,
		stamps:   newStampClock(systemClock{}),
	}

	if err := db.initMainDB(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize main database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		if cerr := db.mainDB.Close(); cerr != nil {
			log.Printf("[DATABASE] Failed to close main database after migration error: %v", cerr)
		}
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	log.Printf("[DATABASE] Opened %s (wal=%t sync=%s busy_timeout=%s)",
		dbconfig.Path, dbconfig.WALMode, dbconfig.SyncMode, dbconfig.BusyTimeout)
	return db, nil
}

// dsn builds the connection string. Settings that sqlite3 keeps per
// connection live here because connections are not reused.
func (db *Database) dsn() string {
	params := url.Values{}
	params.Set("_busy_timeout", fmt.Sprintf("%d", db.dbconfig.BusyTimeout.Milliseconds()))
	if db.dbconfig.SyncMode != "" {
		params.Set("_synchronous", db.dbconfig.SyncMode)
	}
	if db.dbconfig.WALMode {
		params.Set("_journal_mode", "WAL")
	}
	u := url.URL{Scheme: "file", Opaque: escapeURIPath(db.dbconfig.Path), RawQuery: params.Encode()}
	return u.String()
}

// escapeURIPath percent-encodes each segment of path so that '#', '?' and
// '%' in a file name are not read as URI syntax by sqlite.
func escapeURIPath(path string) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func (db *Database) initMainDB(ctx context.Context) error {
	mainDB, err := sql.Open("sqlite3", db.dsn())
	if err != nil {
		return err
	}

	maxOpen := db.dbconfig.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	mainDB.SetMaxOpenConns(maxOpen)
	mainDB.SetMaxIdleConns(0)

	if err := mainDB.PingContext(ctx); err != nil {
		if cerr := mainDB.Close(); cerr != nil {
			return fmt.Errorf("failed to connect: %w; also failed to close mainDB: %v", err, cerr)
		}
		return fmt.Errorf("failed to connect: %w", err)
	}

	db.mainDB = mainDB
	return nil
}

// withConn runs fn on a connection acquired for this call only. The
// connection is released on every exit path, including panics in fn.
func (db *Database) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	db.mux.Lock()
	closed := db.closed
	db.mux.Unlock()
	if closed {
		return fmt.Errorf("%w: database is shut down", ErrStorage)
	}

	conn, err := db.mainDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to acquire connection: %w", ErrStorage, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Printf("[DATABASE] Failed to release connection: %v", cerr)
		}
	}()

	return fn(conn)
}

// Shutdown closes the database. Operations started afterwards fail with ErrStorage.
func (db *Database) Shutdown() error {
	db.mux.Lock()
	defer db.mux.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true

	if err := db.mainDB.Close(); err != nil {
		return fmt.Errorf("failed to close main database: %w", err)
	}
	log.Printf("[DATABASE] Main database closed")
	return nil
}

// GetPath returns the path of the database file
func (db *Database) GetPath() string {
	return db.dbconfig.Path
}

// Stats returns connection statistics of the underlying pool
func (db *Database) Stats() sql.DBStats {
	return db.mainDB.Stats()
}
