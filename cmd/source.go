package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/internal/outwriter"
	"github.com/huangsam/runmatrix/internal/source"
	"github.com/huangsam/runmatrix/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeBackend resolves the database behind the configured source. The auto
// source maps onto the local SQLite database.
func storeBackend() (schema.DatabaseBackend, error) {
	if backend, ok := cfg.Source.Backend(); ok {
		return backend, nil
	}
	if cfg.Source == schema.AutoSource {
		return schema.SQLiteBackend, nil
	}
	return "", fmt.Errorf("source %s has no database. Use --source sqlite, mysql or postgresql", cfg.Source)
}

// sourceCmd focused on run history database management.
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage the run history database",
	Long: `Manage the flow_run_history table that the SQL run sources read from.

Supported backends: SQLite (default, ~/.runmatrix.db), MySQL, PostgreSQL

Subcommands:
  migrate - Create or upgrade the run history schema
  seed    - Fill the table with generated sample runs
  test    - Check the connection and show table statistics

Examples:
  # Create the local SQLite database and fill it with sample runs
  runmatrix source migrate
  runmatrix source seed --runs 20

  # Check a PostgreSQL source (set connection string via env variable)
  RUNMATRIX_SOURCE=postgresql RUNMATRIX_SOURCE_DB_CONNECT="host=... dbname=..." runmatrix source test`,
}

// sourceMigrateCmd runs database migrations for the run history table.
var sourceMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the flow_run_history table.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  runmatrix source migrate

  # Migrate to specific version
  runmatrix source migrate --target-version 1

  # Rollback to initial state
  runmatrix source migrate --target-version 0`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		backend, err := storeBackend()
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		targetVersion := viper.GetInt("target-version")
		if err := source.MigrateRunHistory(backend, cfg.SourceDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// sourceSeedCmd writes generated runs into the run history table.
var sourceSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert generated sample runs",
	Long: `Generate sample runs over the last 24 hours and insert them into the
run history table. The schema is migrated to the latest version first.

Examples:
  runmatrix source seed
  runmatrix source seed --runs 10 --sample-seed 42`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		backend, err := storeBackend()
		if err != nil {
			contract.LogFatal("Failed to seed runs", err)
		}
		if err := source.MigrateRunHistory(backend, cfg.SourceDBConnect, -1, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}

		store, err := source.NewStore(cfg)
		if err != nil {
			contract.LogFatal("Failed to open run history", err)
		}
		defer func() { _ = store.Close() }()

		runs, err := source.NewSampleSource(cfg.SampleSeed, cfg.SampleRuns).Fetch(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to generate runs", err)
		}
		n, err := store.Insert(rootCtx, runs)
		if err != nil {
			contract.LogFatal("Failed to seed runs", err)
		}
		fmt.Printf("Seeded %d runs into %s.\n", n, store.Name())
	},
}

// sourceTestCmd checks the database connection.
var sourceTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the database connection and show statistics",
	Long: `Connect to the configured database and report the schema version, row
counts and the time range of stored runs.

Examples:
  runmatrix source test
  runmatrix source test --source mysql --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if _, err := storeBackend(); err != nil {
			contract.LogFatal("Failed to test source", err)
		}
		store, err := source.NewStore(cfg)
		if err != nil {
			contract.LogFatal("Failed to connect to run history", err)
		}
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus(rootCtx)
		if err != nil {
			contract.LogWarn("Run history is not readable", err)
		}
		if err := outwriter.NewOutWriter().WriteSourceStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write source status", err)
		}
	},
}
