package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// testReport returns a report with two entities and a failure at hour 2.
func testReport(day string) *schema.MatrixReport {
	m := schema.EmptyMatrix()
	for _, e := range []string{"Ops | WF | WF - A", "Ops | C2D | C2D_Sync"} {
		row := map[int]string{}
		for _, h := range m.Hours {
			row[h] = schema.StatusNoRun
		}
		m.Cells[e] = row
		m.Entities = append(m.Entities, e)
	}
	m.Cells["Ops | WF | WF - A"][2] = schema.StatusFailed
	m.Cells["Ops | C2D | C2D_Sync"][14] = schema.StatusRunning
	return &schema.MatrixReport{
		RunID:     "run-1",
		Source:    "sample",
		Day:       day,
		Project:   schema.AllProjects,
		Status:    schema.AllStatuses,
		OK:        true,
		Message:   "built matrix with 2 entities",
		Matrix:    m,
		Selectors: schema.Selectors{Projects: []string{schema.AllProjects, "C2D", "WF"}, Statuses: []string{schema.AllStatuses, "Failed", "Running"}},
		Summary: schema.Summary{
			TotalRuns:          2,
			Entities:           2,
			Projects:           2,
			SuccessRate:        0,
			StatusDistribution: []schema.CountEntry{{Name: "Failed", Count: 1}, {Name: "Running", Count: 1}},
			TopProjects:        []schema.CountEntry{{Name: "C2D", Count: 1}, {Name: "WF", Count: 1}},
		},
		Diagnostics: schema.Diagnostics{InputRows: 2, TotalEntities: 2},
	}
}

func textConfig() *contract.Config {
	return &contract.Config{Output: schema.TextOut, Width: 250, Workers: 2}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name   string
		cfg    *contract.Config
		status string
		want   string
	}{
		{"glyph", &contract.Config{UseEmojis: true}, schema.StatusFailed, "❌"},
		{"glyph for unknown", &contract.Config{UseEmojis: true}, "Weird", "⬜"},
		{"plain", &contract.Config{}, schema.StatusRunning, "RUN"},
		{"plain no run", &contract.Config{}, schema.StatusNoRun, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.status, tt.cfg))
		})
	}
}

func TestHourHeaders(t *testing.T) {
	headers := hourHeaders(schema.DayHours())
	require.Len(t, headers, 25)
	assert.Equal(t, "Entity", headers[0])
	assert.Equal(t, "00", headers[1])
	assert.Equal(t, "23", headers[24])
}

func TestGetMaxTableEntityWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{100, 20},
		{200, 28},
		{400, 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetMaxTableEntityWidth(&contract.Config{Width: tt.width}), "width %d", tt.width)
	}
	assert.Equal(t, 60, GetMaxTableEntityWidth(&contract.Config{Width: 200, UseEmojis: true}))
}

func TestWriteMatrixTables(t *testing.T) {
	var buf bytes.Buffer
	err := writeMatrixTables([]*schema.MatrixReport{testReport("2024-05-01")}, textConfig(), time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "📅 2024-05-01")
	assert.Contains(t, out, "Ops | WF | WF - A")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "Showing 2 of 2 entities")
	assert.Contains(t, out, "Built 1 matrix(es)")
	assert.Contains(t, out, "Source: sample")
}

func TestWriteMatrixTableCappedAndEmpty(t *testing.T) {
	capped := testReport("")
	capped.Diagnostics.TotalEntities = 5
	capped.Diagnostics.CappedEntities = 3

	empty := testReport("")
	empty.OK = false
	empty.Message = "no runs match the selected filters"
	empty.Matrix = schema.EmptyMatrix()
	empty.Diagnostics.Notes = []string{"day filter \"x\" is not a date; showing all days"}

	var buf bytes.Buffer
	cfg := textConfig()
	require.NoError(t, writeMatrixTable(capped, cfg, 40, &buf))
	require.NoError(t, writeMatrixTable(empty, cfg, 40, &buf))

	out := buf.String()
	assert.Contains(t, out, "Showing 2 of 5 entities")
	assert.Contains(t, out, "3 less active entities hidden")
	assert.Contains(t, out, "No runs to show: no runs match the selected filters")
	assert.Contains(t, out, "showing all days")
}

func TestWriteMatrixCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMatrixCSV(&buf, []*schema.MatrixReport{testReport("2024-05-01")}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+2*schema.HoursPerDay)
	assert.Equal(t, []string{"run_id", "day", "source", "entity", "hour", "status"}, records[0])
	assert.Equal(t, []string{"run-1", "2024-05-01", "sample", "Ops | WF | WF - A", "2", schema.StatusFailed}, records[3])
}

func TestWriteReportsStructured(t *testing.T) {
	dir := t.TempDir()

	t.Run("json single", func(t *testing.T) {
		path := filepath.Join(dir, "one.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path}
		require.NoError(t, WriteReports([]*schema.MatrixReport{testReport("")}, cfg, time.Second))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "run-1", got["run_id"])
		assert.Equal(t, true, got["ok"])
		matrix := got["matrix"].(map[string]any)
		assert.Len(t, matrix["entities"], 2)
		assert.Equal(t, schema.StatusFailed, matrix["cells"].(map[string]any)["Ops | WF | WF - A"].(map[string]any)["2"])
	})

	t.Run("json many", func(t *testing.T) {
		path := filepath.Join(dir, "many.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path}
		reports := []*schema.MatrixReport{testReport("2024-05-01"), testReport("2024-05-02")}
		require.NoError(t, WriteReports(reports, cfg, time.Second))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got []map[string]any
		require.NoError(t, json.Unmarshal(data, &got))
		require.Len(t, got, 2)
		assert.Equal(t, "2024-05-02", got[1]["day"])
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "one.yaml")
		cfg := &contract.Config{Output: schema.YAMLOut, OutputFile: path}
		require.NoError(t, WriteReports([]*schema.MatrixReport{testReport("")}, cfg, time.Second))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, yaml.Unmarshal(data, &got))
		assert.Equal(t, "sample", got["source"])
		matrix := got["matrix"].(map[string]any)
		assert.Equal(t, schema.StatusRunning, matrix["cells"].(map[string]any)["Ops | C2D | C2D_Sync"].(map[any]any)[14])
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(dir, "m.parquet")
		cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: path}
		require.NoError(t, WriteReports([]*schema.MatrixReport{testReport("")}, cfg, time.Second))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})
}

func TestWriteSelectors(t *testing.T) {
	sel := testReport("").Selectors

	var buf bytes.Buffer
	require.NoError(t, writeSelectorsTable(&buf, sel))
	assert.Contains(t, buf.String(), schema.AllProjects)
	assert.Contains(t, buf.String(), "Running")

	buf.Reset()
	require.NoError(t, writeSelectorsCSV(&buf, sel))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1+len(sel.Projects)+len(sel.Statuses))
	assert.Equal(t, []string{"project", schema.AllProjects}, records[1])

	err = WriteSelectors(sel, &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(t.TempDir(), "x.parquet")})
	assert.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	r := testReport("")

	var buf bytes.Buffer
	require.NoError(t, writeSummaryTable(&buf, r, &contract.Config{UseEmojis: true}))
	out := buf.String()
	assert.Contains(t, out, "Total runs:   2")
	assert.Contains(t, out, "❌ Failed")
	assert.Contains(t, out, "Time span:    n/a to n/a")

	buf.Reset()
	require.NoError(t, writeSummaryCSV(&buf, r.Summary))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"total_runs", "", "2"}, records[1])
	assert.Equal(t, []string{"status", "Failed", "1"}, records[7])

	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, WriteSummary(r, &contract.Config{Output: schema.JSONOut, OutputFile: path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(2), got["summary"].(map[string]any)["total_runs"])
}

func TestWriteRepair(t *testing.T) {
	dir := t.TempDir()
	result := schema.RepairResult{Path: "m.json", OK: true, Message: "matrix is valid", Matrix: testReport("").Matrix}

	path := filepath.Join(dir, "repair.txt")
	require.NoError(t, WriteRepair(result, &contract.Config{Output: schema.TextOut, OutputFile: path, Width: 250}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "✅ repaired m.json: matrix is valid")
	assert.Contains(t, string(data), "Ops | C2D | C2D_Sync")

	bad := schema.RepairResult{Path: "bad.json", Message: "cells is not a mapping", Matrix: schema.EmptyMatrix()}
	path = filepath.Join(dir, "bad.txt")
	require.NoError(t, WriteRepair(bad, &contract.Config{Output: schema.TextOut, OutputFile: path}))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "❌ unusable bad.json: cells is not a mapping\n", string(data))

	assert.Error(t, WriteRepair(result, &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(dir, "x.parquet")}))
}

func TestWriteSourceStatus(t *testing.T) {
	status := schema.SourceStatus{Backend: "sqlite", Connected: true, SchemaVersion: 1, TotalRuns: 42, DistinctFlows: 5}
	path := filepath.Join(t.TempDir(), "status.txt")
	require.NoError(t, WriteSourceStatus(status, &contract.Config{Output: schema.TextOut, OutputFile: path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Run source: sqlite (✅ connected)")
	assert.Contains(t, out, "Total runs:     42")
	assert.Contains(t, out, "Oldest run:     n/a")
}
