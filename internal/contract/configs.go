package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/runmatrix/internal/logging"
	"github.com/huangsam/runmatrix/schema"
)

// Default values for configuration.
const (
	DefaultLookback   = "1 month"
	DefaultSampleRuns = 50
	MaxEntitiesLimit  = 5000
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "text"
)

// DefaultCSVDirs are searched for flow_data_*.csv exports, in order.
var DefaultCSVDirs = []string{".", "./data"}

// DefaultWorkers is the default number of days built concurrently.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DayFormat is the calendar date representation of the day filter.
const DayFormat = "2006-01-02"

// Config holds the runtime configuration for building run matrices.
// This struct remains the "final, validated" config.
type Config struct {
	Source          schema.SourceKind
	SourceDBConnect string // Please use env var as this is plaintext
	CSVDirs         []string
	Lookback        time.Duration
	Owners          []string

	Days        []string
	Project     string
	Status      string
	MaxEntities int
	Workers     int

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	LogLevel  string
	LogFormat string

	MetricsFile string
	SampleSeed  int64
	SampleRuns  int

	UseEmojis bool // Enable status glyphs in table output
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Source          string   `mapstructure:"source"`
	SourceDBConnect string   `mapstructure:"source-db-connect"`
	CSVDir          []string `mapstructure:"csv-dir"`
	Lookback        string   `mapstructure:"lookback"`
	Owners          string   `mapstructure:"owners"`
	Output          string   `mapstructure:"output"`
	OutputFile      string   `mapstructure:"output-file"`
	Width           int      `mapstructure:"width"`
	Emoji           string   `mapstructure:"emoji"`
	Color           string   `mapstructure:"color"`
	LogLevel        string   `mapstructure:"log-level"`
	LogFormat       string   `mapstructure:"log-format"`
	MetricsFile     string   `mapstructure:"metrics-file"`
	SampleSeed      int64    `mapstructure:"sample-seed"`

	// --- Fields from matrixCmd.Flags() and friends ---
	Day         []string `mapstructure:"day"`
	Project     string   `mapstructure:"project"`
	Status      string   `mapstructure:"status"`
	MaxEntities int      `mapstructure:"max-entities"`
	Workers     int      `mapstructure:"workers"`

	// --- Fields from sourceSeedCmd.Flags() ---
	Runs int `mapstructure:"runs"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.CSVDirs = append([]string(nil), c.CSVDirs...)
	clone.Owners = append([]string(nil), c.Owners...)
	clone.Days = append([]string(nil), c.Days...)
	return &clone
}

// ProcessAndValidate populates cfg from input, rejecting invalid values.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateSourceConfigs(cfg, input); err != nil {
		return err
	}
	if err := processMatrixFilters(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("source-db-connect is required when using %s source", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("source-db-connect is required when using %s source", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	default:
		return fmt.Errorf("unsupported database backend '%s'", backend)
	}
	return nil
}

// validateSimpleInputs processes and validates output, logging and toggles.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsFile = strings.TrimSpace(input.MetricsFile)
	cfg.SampleSeed = input.SampleSeed

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if _, err := logging.ParseLevel(input.LogLevel); err != nil {
		return err
	}
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	cfg.SampleRuns = input.Runs
	if cfg.SampleRuns == 0 {
		cfg.SampleRuns = DefaultSampleRuns
	}
	if cfg.SampleRuns < 0 {
		return fmt.Errorf("runs must be greater than 0 (received %d)", input.Runs)
	}
	return nil
}

// validateSourceConfigs resolves the run source, its connection and lookback.
func validateSourceConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.Source = schema.SourceKind(strings.ToLower(strings.TrimSpace(input.Source)))
	if cfg.Source == "" {
		cfg.Source = schema.AutoSource
	}
	if _, ok := schema.ValidSourceKinds[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be auto, sqlite, mysql, postgresql, csv, sample", input.Source)
	}
	cfg.SourceDBConnect = input.SourceDBConnect
	if backend, ok := cfg.Source.Backend(); ok {
		if err := ValidateDatabaseConnectionString(backend, cfg.SourceDBConnect); err != nil {
			return err
		}
	}

	cfg.CSVDirs = nil
	for _, dir := range input.CSVDir {
		if d := strings.TrimSpace(dir); d != "" {
			cfg.CSVDirs = append(cfg.CSVDirs, d)
		}
	}
	if len(cfg.CSVDirs) == 0 {
		cfg.CSVDirs = append([]string(nil), DefaultCSVDirs...)
	}

	lookback := input.Lookback
	if strings.TrimSpace(lookback) == "" {
		lookback = DefaultLookback
	}
	d, err := ParseLookbackDuration(lookback)
	if err != nil {
		return fmt.Errorf("invalid --lookback: %w", err)
	}
	cfg.Lookback = d

	cfg.Owners = nil
	if input.Owners != "" {
		for p := range strings.SplitSeq(input.Owners, ",") {
			if owner := strings.TrimSpace(p); owner != "" {
				cfg.Owners = append(cfg.Owners, owner)
			}
		}
	}
	return nil
}

// processMatrixFilters validates the day, project, status and cap settings.
func processMatrixFilters(cfg *Config, input *ConfigRawInput) error {
	cfg.Days = nil
	seen := make(map[string]bool)
	for _, raw := range input.Day {
		day := strings.TrimSpace(raw)
		if day == "" || seen[day] {
			continue
		}
		if _, err := time.Parse(DayFormat, day); err != nil {
			return fmt.Errorf("invalid --day '%s'. expected YYYY-MM-DD", raw)
		}
		seen[day] = true
		cfg.Days = append(cfg.Days, day)
	}

	cfg.Project = strings.TrimSpace(input.Project)
	if cfg.Project == "" {
		cfg.Project = schema.AllProjects
	}
	cfg.Status = strings.TrimSpace(input.Status)
	if cfg.Status == "" {
		cfg.Status = schema.AllStatuses
	}

	if input.MaxEntities <= 0 || input.MaxEntities > MaxEntitiesLimit {
		return fmt.Errorf("max-entities must be greater than 0 and cannot exceed %d (received %d)", MaxEntitiesLimit, input.MaxEntities)
	}
	cfg.MaxEntities = input.MaxEntities

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers
	return nil
}

// RevalidateMatrix applies per-request matrix filters on top of an already
// validated config. Empty values keep what cfg already holds.
func RevalidateMatrix(cfg *Config, day, project, status string, maxEntities int) error {
	input := &ConfigRawInput{
		Day:         cfg.Days,
		Project:     cfg.Project,
		Status:      cfg.Status,
		MaxEntities: cfg.MaxEntities,
		Workers:     cfg.Workers,
	}
	if day != "" {
		input.Day = []string{day}
	}
	if project != "" {
		input.Project = project
	}
	if status != "" {
		input.Status = status
	}
	if maxEntities != 0 {
		input.MaxEntities = maxEntities
	}
	if input.Workers <= 0 {
		input.Workers = DefaultWorkers
	}
	return processMatrixFilters(cfg, input)
}
