package contract

import (
	"testing"
	"time"

	"github.com/huangsam/runmatrix/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input that passes validation as-is.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Source:      "sample",
		Lookback:    DefaultLookback,
		Output:      "text",
		Emoji:       "no",
		Color:       "yes",
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		MaxEntities: schema.DefaultMaxEntities,
		Workers:     2,
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "parquet with file", mutate: func(in *ConfigRawInput) { in.Output = "parquet"; in.OutputFile = "m.parquet" }},
		{name: "invalid emoji toggle", mutate: func(in *ConfigRawInput) { in.Emoji = "maybe" }, expectError: true},
		{name: "invalid log level", mutate: func(in *ConfigRawInput) { in.LogLevel = "loud" }, expectError: true},
		{name: "invalid log format", mutate: func(in *ConfigRawInput) { in.LogFormat = "xml" }, expectError: true},
		{name: "negative width", mutate: func(in *ConfigRawInput) { in.Width = -1 }, expectError: true},
		{name: "negative runs", mutate: func(in *ConfigRawInput) { in.Runs = -3 }, expectError: true},
		{name: "invalid source", mutate: func(in *ConfigRawInput) { in.Source = "excel" }, expectError: true},
		{name: "empty source defaults to auto", mutate: func(in *ConfigRawInput) { in.Source = "" }},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.Source = "mysql" }, expectError: true},
		{
			name: "mysql with dsn",
			mutate: func(in *ConfigRawInput) {
				in.Source = "mysql"
				in.SourceDBConnect = "user:pass@tcp(localhost:3306)/flows"
			},
		},
		{name: "invalid lookback", mutate: func(in *ConfigRawInput) { in.Lookback = "forever" }, expectError: true},
		{name: "invalid day", mutate: func(in *ConfigRawInput) { in.Day = []string{"05/01/2024"} }, expectError: true},
		{name: "zero max entities", mutate: func(in *ConfigRawInput) { in.MaxEntities = 0 }, expectError: true},
		{name: "max entities over limit", mutate: func(in *ConfigRawInput) { in.MaxEntities = MaxEntitiesLimit + 1 }, expectError: true},
		{name: "max entities at limit", mutate: func(in *ConfigRawInput) { in.MaxEntities = MaxEntitiesLimit }},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	input := validInput()
	input.Source = ""
	input.Lookback = ""
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.AutoSource, cfg.Source)
	assert.Equal(t, 30*24*time.Hour, cfg.Lookback)
	assert.Equal(t, DefaultCSVDirs, cfg.CSVDirs)
	assert.Equal(t, schema.AllProjects, cfg.Project)
	assert.Equal(t, schema.AllStatuses, cfg.Status)
	assert.Equal(t, DefaultSampleRuns, cfg.SampleRuns)
	assert.False(t, cfg.UseEmojis)
	assert.True(t, cfg.UseColors)
	assert.Empty(t, cfg.Days)
}

func TestProcessAndValidateFilters(t *testing.T) {
	input := validInput()
	input.Owners = " alice, ,bob "
	input.Day = []string{"2024-05-01", " 2024-05-02", "2024-05-01", ""}
	input.Project = " WF "
	input.Status = "Failed"
	input.CSVDir = []string{" exports ", ""}
	input.Output = "JSON"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, []string{"alice", "bob"}, cfg.Owners)
	assert.Equal(t, []string{"2024-05-01", "2024-05-02"}, cfg.Days)
	assert.Equal(t, "WF", cfg.Project)
	assert.Equal(t, "Failed", cfg.Status)
	assert.Equal(t, []string{"exports"}, cfg.CSVDirs)
	assert.Equal(t, schema.JSONOut, cfg.Output)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite needs nothing", schema.SQLiteBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "u:p@tcp(db:3306)/flows", false},
		{"mysql missing tcp", schema.MySQLBackend, "u:p@db/flows", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=db user=u dbname=flows", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=db user=u", true},
		{"unsupported", schema.DatabaseBackend("oracle"), "x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Owners: []string{"a"}, Days: []string{"2024-05-01"}, CSVDirs: []string{"."}}
	clone := cfg.Clone()
	clone.Owners[0] = "b"
	clone.Days = append(clone.Days, "2024-05-02")
	assert.Equal(t, []string{"a"}, cfg.Owners)
	assert.Len(t, cfg.Days, 1)
}

func TestRevalidateMatrix(t *testing.T) {
	base := func() *Config {
		return &Config{
			Days:        []string{"2024-05-01"},
			Project:     "WF",
			Status:      schema.AllStatuses,
			MaxEntities: 300,
			Workers:     2,
		}
	}

	tests := []struct {
		name        string
		day         string
		project     string
		status      string
		maxEntities int
		wantErr     string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "empty values keep config",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"2024-05-01"}, cfg.Days)
				assert.Equal(t, "WF", cfg.Project)
				assert.Equal(t, 300, cfg.MaxEntities)
				assert.Equal(t, 2, cfg.Workers)
			},
		},
		{
			name:        "overrides apply",
			day:         "2024-05-02",
			project:     " AMZ ",
			status:      "Failed",
			maxEntities: 10,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"2024-05-02"}, cfg.Days)
				assert.Equal(t, "AMZ", cfg.Project)
				assert.Equal(t, "Failed", cfg.Status)
				assert.Equal(t, 10, cfg.MaxEntities)
			},
		},
		{name: "bad day", day: "05/02/2024", wantErr: "invalid --day"},
		{name: "negative max entities", maxEntities: -1, wantErr: "max-entities"},
		{name: "max entities over limit", maxEntities: MaxEntitiesLimit + 1, wantErr: "max-entities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			err := RevalidateMatrix(cfg, tt.day, tt.project, tt.status, tt.maxEntities)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestRevalidateMatrixDefaultsWorkers(t *testing.T) {
	cfg := &Config{MaxEntities: 5}
	require.NoError(t, RevalidateMatrix(cfg, "", "", "", 0))
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, schema.AllProjects, cfg.Project)
	assert.Equal(t, schema.AllStatuses, cfg.Status)
	assert.Empty(t, cfg.Days)
}
