package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// SourceKind represents where a batch of raw run records comes from.
	SourceKind string

	// DatabaseBackend represents the database backend holding run history.
	DatabaseBackend string

	// TriggerGroup represents the coarse trigger category of a run.
	TriggerGroup string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All run sources supported.
const (
	AutoSource       SourceKind = "auto" // default
	SQLiteSource     SourceKind = "sqlite"
	MySQLSource      SourceKind = "mysql"
	PostgreSQLSource SourceKind = "postgresql"
	CSVSource        SourceKind = "csv"
	SampleSource     SourceKind = "sample"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// Trigger groups derived from the raw trigger type.
const (
	ManualTrigger     TriggerGroup = "Manual"
	RecurrenceTrigger TriggerGroup = "Recurrence"
	OtherTrigger      TriggerGroup = "OtherTrigger"
)

// Sentinel and default values shared by the pipeline and its callers.
const (
	AllProjects        = "All Projects"
	AllStatuses        = "All Statuses"
	Unknown            = "Unknown"
	UnknownTrigger     = "unknown"
	DefaultMaxEntities = 300
	HoursPerDay        = 24
)

// DegenerateDisplayKey is the composite key produced when owner, project and
// flow name are all unknown. Rows carrying it are never shown.
const DegenerateDisplayKey = Unknown + " | " + Unknown + " | " + Unknown

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidSourceKinds lists all valid run sources.
var ValidSourceKinds = map[SourceKind]struct{}{
	AutoSource:       {},
	SQLiteSource:     {},
	MySQLSource:      {},
	PostgreSQLSource: {},
	CSVSource:        {},
	SampleSource:     {},
}

// Backend returns the database backend behind a SQL source kind.
func (k SourceKind) Backend() (DatabaseBackend, bool) {
	switch k {
	case SQLiteSource:
		return SQLiteBackend, true
	case MySQLSource:
		return MySQLBackend, true
	case PostgreSQLSource:
		return PostgreSQLBackend, true
	default:
		return "", false
	}
}
