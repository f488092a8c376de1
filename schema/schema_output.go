package schema

import (
	"slices"
	"time"
)

// Matrix is the per-entity, per-hour status summary. Every entity has exactly
// one status for every hour on the axis. A built Matrix is treated as
// immutable; use Clone before changing it.
type Matrix struct {
	Entities []string                  `json:"entities" yaml:"entities"`
	Hours    []int                     `json:"hours" yaml:"hours"`
	Cells    map[string]map[int]string `json:"cells" yaml:"cells"`
}

// EmptyMatrix returns a matrix with no entities over the full day axis.
func EmptyMatrix() *Matrix {
	return &Matrix{
		Entities: []string{},
		Hours:    DayHours(),
		Cells:    map[string]map[int]string{},
	}
}

// Empty reports whether the matrix has no entities.
func (m *Matrix) Empty() bool {
	return m == nil || len(m.Entities) == 0
}

// Status returns the status of an entity at an hour, or "No Run" if absent.
func (m *Matrix) Status(entity string, hour int) string {
	if m == nil {
		return StatusNoRun
	}
	if s, ok := m.Cells[entity][hour]; ok {
		return s
	}
	return StatusNoRun
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	if m == nil {
		return EmptyMatrix()
	}
	out := &Matrix{
		Entities: slices.Clone(m.Entities),
		Hours:    slices.Clone(m.Hours),
		Cells:    make(map[string]map[int]string, len(m.Cells)),
	}
	for e, hours := range m.Cells {
		row := make(map[int]string, len(hours))
		for h, s := range hours {
			row[h] = s
		}
		out.Cells[e] = row
	}
	return out
}

// Selectors holds the filter values a presentation layer offers, each list
// starting with its "All" sentinel.
type Selectors struct {
	Projects []string `json:"projects" yaml:"projects"`
	Statuses []string `json:"statuses" yaml:"statuses"`
}

// CountEntry is one row of a ranked count.
type CountEntry struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Summary holds headline statistics over a normalized batch.
type Summary struct {
	TotalRuns          int          `json:"total_runs" yaml:"total_runs"`
	Entities           int          `json:"entities" yaml:"entities"`
	Projects           int          `json:"projects" yaml:"projects"`
	StatusDistribution []CountEntry `json:"status_distribution" yaml:"status_distribution"`
	TopProjects        []CountEntry `json:"top_projects" yaml:"top_projects"`
	SuccessRate        float64      `json:"success_rate" yaml:"success_rate"`
	FirstRun           time.Time    `json:"first_run" yaml:"first_run"`
	LastRun            time.Time    `json:"last_run" yaml:"last_run"`
}

// Diagnostics counts what the pipeline dropped or repaired along the way.
type Diagnostics struct {
	InputRows         int      `json:"input_rows" yaml:"input_rows"`
	DroppedTimestamps int      `json:"dropped_timestamps" yaml:"dropped_timestamps"`
	FilteredByDay     int      `json:"filtered_by_day" yaml:"filtered_by_day"`
	DayFilterFailed   bool     `json:"day_filter_failed" yaml:"day_filter_failed"`
	DegenerateKeys    int      `json:"degenerate_keys" yaml:"degenerate_keys"`
	InvalidHours      int      `json:"invalid_hours" yaml:"invalid_hours"`
	RepairedKeys      bool     `json:"repaired_keys" yaml:"repaired_keys"`
	TotalEntities     int      `json:"total_entities" yaml:"total_entities"`
	CappedEntities    int      `json:"capped_entities" yaml:"capped_entities"`
	Notes             []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Note appends a diagnostic message.
func (d *Diagnostics) Note(msg string) {
	d.Notes = append(d.Notes, msg)
}

// MatrixReport is everything one pipeline run produces for a caller: the
// matrix, the filter selectors, headline statistics and what was dropped.
type MatrixReport struct {
	RunID       string      `json:"run_id" yaml:"run_id"`
	Source      string      `json:"source" yaml:"source"`
	Day         string      `json:"day,omitempty" yaml:"day,omitempty"`
	Project     string      `json:"project" yaml:"project"`
	Status      string      `json:"status" yaml:"status"`
	OK          bool        `json:"ok" yaml:"ok"`
	Message     string      `json:"message" yaml:"message"`
	Matrix      *Matrix     `json:"matrix" yaml:"matrix"`
	Selectors   Selectors   `json:"selectors" yaml:"selectors"`
	Summary     Summary     `json:"summary" yaml:"summary"`
	Diagnostics Diagnostics `json:"diagnostics" yaml:"diagnostics"`
}

// RepairResult is the verdict of repairing a matrix document.
type RepairResult struct {
	Path    string  `json:"path" yaml:"path"`
	OK      bool    `json:"ok" yaml:"ok"`
	Message string  `json:"message" yaml:"message"`
	Matrix  *Matrix `json:"matrix" yaml:"matrix"`
}
