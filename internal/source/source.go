// Package source delivers raw run batches from databases, CSV exports and a
// sample generator.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// runHistoryTable holds one row per automation run.
const runHistoryTable = "flow_run_history"

// FetchOptions narrows what a database source reads.
type FetchOptions struct {
	Lookback time.Duration // Only runs started within this window
	Owners   []string      // Owner allowlist, empty keeps every owner
}

// New builds the run source selected by cfg. The auto source is a Chain over
// the local SQLite database, CSV exports and sample data.
func New(cfg *contract.Config) (contract.RunSource, error) {
	opts := FetchOptions{Lookback: cfg.Lookback, Owners: cfg.Owners}
	switch cfg.Source {
	case schema.AutoSource, "":
		return NewAutoChain(cfg), nil
	case schema.CSVSource:
		return NewCSVSource(cfg.CSVDirs), nil
	case schema.SampleSource:
		return NewSampleSource(cfg.SampleSeed, cfg.SampleRuns), nil
	}
	backend, ok := cfg.Source.Backend()
	if !ok {
		return nil, fmt.Errorf("unsupported source: %s", cfg.Source)
	}
	return OpenSQLStore(backend, cfg.SourceDBConnect, opts)
}

// NewStore opens the database behind cfg for commands that write or inspect
// run history. The auto source resolves to the local SQLite database.
func NewStore(cfg *contract.Config) (contract.RunStore, error) {
	backend, ok := cfg.Source.Backend()
	if !ok {
		if cfg.Source != schema.AutoSource {
			return nil, fmt.Errorf("source %s has no database", cfg.Source)
		}
		backend = schema.SQLiteBackend
	}
	return OpenSQLStore(backend, cfg.SourceDBConnect, FetchOptions{Lookback: cfg.Lookback, Owners: cfg.Owners})
}

// openDB opens and pings a database connection for the backend.
func openDB(ctx context.Context, backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=...", err)
		}

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	return db, nil
}

// placeholder returns the bind parameter for the n-th (1-based) argument.
func placeholder(backend schema.DatabaseBackend, n int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
