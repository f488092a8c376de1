package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
)

// WriteRepair outputs the verdict of a matrix repair. The text and CSV forms
// print the verdict line followed by the repaired matrix.
func WriteRepair(result schema.RepairResult, cfg *contract.Config) error {
	if ok, err := writeStructured(cfg, result); ok {
		return err
	}
	if cfg.Output == schema.ParquetOut {
		return fmt.Errorf("parquet output is not supported for matrix repair")
	}
	report := &schema.MatrixReport{
		Source:  result.Path,
		Project: schema.AllProjects,
		Status:  schema.AllStatuses,
		OK:      result.OK,
		Message: result.Message,
		Matrix:  result.Matrix,
	}
	if result.Matrix != nil {
		report.Diagnostics.TotalEntities = len(result.Matrix.Entities)
	}
	if cfg.Output == schema.CSVOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMatrixCSV(w, []*schema.MatrixReport{report})
		}, "Wrote CSV")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		verdict := "✅ repaired"
		if !result.OK {
			verdict = "❌ unusable"
		}
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", verdict, result.Path, result.Message); err != nil {
			return err
		}
		if result.Matrix.Empty() {
			return nil
		}
		return writeMatrixTable(report, cfg, GetMaxTableEntityWidth(cfg), w)
	}, "Wrote table")
}

// WriteSourceStatus outputs connection and table details of a run source.
func WriteSourceStatus(status schema.SourceStatus, cfg *contract.Config) error {
	if ok, err := writeStructured(cfg, status); ok {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		connected := "❌ unreachable"
		if status.Connected {
			connected = "✅ connected"
		}
		lines := []string{
			fmt.Sprintf("Run source: %s (%s)", status.Backend, connected),
			fmt.Sprintf("  Schema version: %d (dirty: %t)", status.SchemaVersion, status.Dirty),
			fmt.Sprintf("  Total runs:     %d", status.TotalRuns),
			fmt.Sprintf("  Distinct flows: %d", status.DistinctFlows),
			fmt.Sprintf("  Oldest run:     %s", formatTime(status.OldestRunTime)),
			fmt.Sprintf("  Latest run:     %s", formatTime(status.LatestRunTime)),
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}, "Wrote status")
}
