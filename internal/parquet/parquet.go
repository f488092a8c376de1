// Package parquet provides data structures and functions for exporting run
// matrices to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/huangsam/runmatrix/schema"
	"github.com/parquet-go/parquet-go"
)

// MatrixCell is one (entity, hour) cell of a built matrix in long format.
type MatrixCell struct {
	// RunID identifies the pipeline run that built the matrix
	RunID string `parquet:"run_id,snappy"`

	// Day is the calendar date the matrix was filtered to (nullable)
	Day *string `parquet:"day,optional,snappy"`

	// Source names the run source that delivered the raw runs
	Source string `parquet:"source,snappy"`

	// Entity is the display key "{owner} | {project} | {flow_name}"
	Entity string `parquet:"entity,snappy"`

	// Position is the entity's row index in the matrix
	Position int32 `parquet:"position,snappy"`

	// Hour is the hour of day, 0-23
	Hour int32 `parquet:"hour,snappy"`

	// Status is the representative canonical status of the bucket
	Status string `parquet:"status,snappy"`
}

// SummaryCount is one ranked count of a run summary.
type SummaryCount struct {
	RunID string `parquet:"run_id,snappy"`

	// Kind is "status" for the status distribution or "project" for top projects
	Kind string `parquet:"kind,snappy"`

	Name  string `parquet:"name,snappy"`
	Count int32  `parquet:"count,snappy"`
}

// Summary count kinds.
const (
	StatusKind  = "status"
	ProjectKind = "project"
)

// MatrixCellsFromReports flattens the matrices of reports into cells, in
// entity then hour order.
func MatrixCellsFromReports(reports []*schema.MatrixReport) []MatrixCell {
	var cells []MatrixCell
	for _, r := range reports {
		if r == nil || r.Matrix == nil {
			continue
		}
		var day *string
		if r.Day != "" {
			d := r.Day
			day = &d
		}
		for i, e := range r.Matrix.Entities {
			for _, h := range r.Matrix.Hours {
				cells = append(cells, MatrixCell{
					RunID:    r.RunID,
					Day:      day,
					Source:   r.Source,
					Entity:   e,
					Position: int32(i),
					Hour:     int32(h),
					Status:   r.Matrix.Status(e, h),
				})
			}
		}
	}
	return cells
}

// SummaryCountsFromReport flattens the status distribution and top projects of a report.
func SummaryCountsFromReport(r *schema.MatrixReport) []SummaryCount {
	counts := make([]SummaryCount, 0, len(r.Summary.StatusDistribution)+len(r.Summary.TopProjects))
	for _, c := range r.Summary.StatusDistribution {
		counts = append(counts, SummaryCount{RunID: r.RunID, Kind: StatusKind, Name: c.Name, Count: int32(c.Count)})
	}
	for _, c := range r.Summary.TopProjects {
		counts = append(counts, SummaryCount{RunID: r.RunID, Kind: ProjectKind, Name: c.Name, Count: int32(c.Count)})
	}
	return counts
}

// WriteMatrixCellsParquet writes a slice of MatrixCell structs to a Parquet file.
func WriteMatrixCellsParquet(data []MatrixCell, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSummaryCountsParquet writes a slice of SummaryCount structs to a Parquet file.
func WriteSummaryCountsParquet(data []SummaryCount, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet creates outputPath and writes rows with a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
