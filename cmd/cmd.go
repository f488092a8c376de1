// Package cmd defines the command-line interface for runmatrix.
package cmd

import (
	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the source subcommands to the parent source command
	sourceCmd.AddCommand(sourceMigrateCmd)
	sourceCmd.AddCommand(sourceSeedCmd)
	sourceCmd.AddCommand(sourceTestCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("source", string(schema.AutoSource), "Run source: auto or sqlite or mysql or postgresql or csv or sample")
	rootCmd.PersistentFlags().String("source-db-connect", "", "Database connection string (SQLite path, user:pass@tcp(host:port)/dbname, or host=... dbname=...)")
	rootCmd.PersistentFlags().StringSlice("csv-dir", contract.DefaultCSVDirs, "Directories searched for flow_data_*.csv exports")
	rootCmd.PersistentFlags().String("lookback", contract.DefaultLookback, "Only read runs started within this window (e.g. '1 month', '72h')")
	rootCmd.PersistentFlags().String("owners", "", "Comma-separated list of flow owners to keep")
	rootCmd.PersistentFlags().StringSlice("day", nil, "Calendar day to show (YYYY-MM-DD); repeat for several days")
	rootCmd.PersistentFlags().String("project", schema.AllProjects, "Only show runs of this project")
	rootCmd.PersistentFlags().String("status", schema.AllStatuses, "Only show runs with this status")
	rootCmd.PersistentFlags().Int("max-entities", schema.DefaultMaxEntities, "Maximum number of matrix rows, most active first")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of days built concurrently")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Show status glyphs in table output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", contract.DefaultLogFormat, "Log format: text or json")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write pipeline metrics to this file in Prometheus text format")
	rootCmd.PersistentFlags().Int64("sample-seed", 0, "Seed for the sample source (0 = time based)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of sourceSeedCmd to Viper
	sourceSeedCmd.Flags().Int("runs", contract.DefaultSampleRuns, "Maximum generated runs per sample flow")
	if err := viper.BindPFlags(sourceSeedCmd.Flags()); err != nil {
		contract.LogFatal("Error binding source seed flags", err)
	}

	// Bind all flags of sourceMigrateCmd to Viper
	sourceMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(sourceMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding source migrate flags", err)
	}
}
