package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/runmatrix/core"
	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/internal/logging"
	"github.com/huangsam/runmatrix/internal/metrics"
	"github.com/huangsam/runmatrix/internal/source"
	"github.com/huangsam/runmatrix/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "runmatrix",
	Short:              "Show automation runs as an hourly status matrix.",
	Long:               `Runmatrix turns flow run history into a per-hour status grid so failures and gaps stand out at a glance.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".runmatrix")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("RUNMATRIX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Set defaults in Viper
	viper.SetDefault("source", schema.AutoSource)
	viper.SetDefault("source-db-connect", "")
	viper.SetDefault("csv-dir", contract.DefaultCSVDirs)
	viper.SetDefault("lookback", contract.DefaultLookback)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("emoji", "yes")
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("log-format", contract.DefaultLogFormat)
	viper.SetDefault("project", schema.AllProjects)
	viper.SetDefault("status", schema.AllStatuses)
	viper.SetDefault("max-entities", schema.DefaultMaxEntities)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("runs", contract.DefaultSampleRuns)
}

// sharedSetup unmarshals config, runs validation and configures logging.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Logs go to stderr so they never mix with rendered output.
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.LogFormat, nil)
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// runWithSource opens the configured run source, runs fn against it and
// writes the metrics file when one is configured.
func runWithSource(fn core.ExecutorFunc) error {
	src, err := source.New(cfg)
	if err != nil {
		return fmt.Errorf("open run source: %w", err)
	}
	if closer, ok := src.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	rec := metrics.NewRecorder()
	runErr := fn(rootCtx, cfg, src, rec)
	if cfg.MetricsFile != "" {
		if err := rec.WriteFile(cfg.MetricsFile); err != nil {
			contract.LogWarn("Cannot write metrics", err)
		}
	}
	return runErr
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
