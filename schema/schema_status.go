package schema

import "time"

// SourceStatus represents the status of a database run source.
type SourceStatus struct {
	Backend       string    `json:"backend" yaml:"backend"`
	Connected     bool      `json:"connected" yaml:"connected"`
	SchemaVersion uint      `json:"schema_version" yaml:"schema_version"`
	Dirty         bool      `json:"dirty" yaml:"dirty"`
	TotalRuns     int       `json:"total_runs" yaml:"total_runs"`
	DistinctFlows int       `json:"distinct_flows" yaml:"distinct_flows"`
	OldestRunTime time.Time `json:"oldest_run_time" yaml:"oldest_run_time"`
	LatestRunTime time.Time `json:"latest_run_time" yaml:"latest_run_time"`
}
