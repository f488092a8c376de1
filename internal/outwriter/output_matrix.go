package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/internal/parquet"
	"github.com/huangsam/runmatrix/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteReports outputs matrix reports, dispatching based on the output format configured.
// A single report is written as one document and several as a list.
func WriteReports(reports []*schema.MatrixReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut, schema.YAMLOut:
		var data any = reports
		if len(reports) == 1 {
			data = reports[0]
		}
		if _, err := writeStructured(cfg, data); err != nil {
			return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMatrixCSV(w, reports)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteMatrixCellsParquet(parquet.MatrixCellsFromReports(reports), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMatrixTables(reports, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// hourHeaders returns "Entity" followed by two-digit hour labels.
func hourHeaders(hours []int) []string {
	headers := make([]string, 0, len(hours)+1)
	headers = append(headers, "Entity")
	for _, h := range hours {
		headers = append(headers, fmt.Sprintf("%02d", h))
	}
	return headers
}

// formatCell renders a status as a glyph, a colored label or a plain label.
func formatCell(status string, cfg *contract.Config) string {
	switch {
	case cfg.UseEmojis:
		return contract.GetStatusGlyph(status)
	case cfg.UseColors:
		return contract.GetColorLabel(status)
	default:
		return contract.GetPlainLabel(status)
	}
}

// writeMatrixTables writes one table per report followed by a run footer.
func writeMatrixTables(reports []*schema.MatrixReport, cfg *contract.Config, duration time.Duration, w io.Writer) error {
	entityWidth := GetMaxTableEntityWidth(cfg)
	source := ""
	for _, r := range reports {
		source = r.Source
		if r.Day != "" {
			if _, err := fmt.Fprintf(w, "📅 %s\n", r.Day); err != nil {
				return err
			}
		}
		if err := writeMatrixTable(r, cfg, entityWidth, w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Built %d matrix(es) in %v with %d workers. Source: %s\n", len(reports), duration, cfg.Workers, source)
	return err
}

// writeMatrixTable renders a single report as an entity by hour table.
func writeMatrixTable(r *schema.MatrixReport, cfg *contract.Config, entityWidth int, w io.Writer) error {
	for _, note := range r.Diagnostics.Notes {
		if _, err := fmt.Fprintf(w, "⚠️  %s\n", note); err != nil {
			return err
		}
	}
	if r.Matrix.Empty() {
		_, err := fmt.Fprintf(w, "No runs to show: %s\n", r.Message)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header(hourHeaders(r.Matrix.Hours))
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignCenter
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft}
	})

	data := make([][]string, 0, len(r.Matrix.Entities))
	for _, e := range r.Matrix.Entities {
		row := make([]string, 0, len(r.Matrix.Hours)+1)
		row = append(row, contract.TruncateLabel(e, entityWidth))
		for _, h := range r.Matrix.Hours {
			row = append(row, formatCell(r.Matrix.Status(e, h), cfg))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	shown := len(r.Matrix.Entities)
	total := max(r.Diagnostics.TotalEntities, shown)
	if _, err := fmt.Fprintf(w, "Showing %d of %d entities (project: %s, status: %s)\n", shown, total, r.Project, r.Status); err != nil {
		return err
	}
	if r.Diagnostics.CappedEntities > 0 {
		if _, err := fmt.Fprintf(w, "%d less active entities hidden; raise --max-entities to see them\n", r.Diagnostics.CappedEntities); err != nil {
			return err
		}
	}
	return nil
}

// writeMatrixCSV writes every cell of every report in long format.
func writeMatrixCSV(w io.Writer, reports []*schema.MatrixReport) error {
	header := []string{"run_id", "day", "source", "entity", "hour", "status"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range reports {
			if r.Matrix == nil {
				continue
			}
			for _, e := range r.Matrix.Entities {
				for _, h := range r.Matrix.Hours {
					rec := []string{r.RunID, r.Day, r.Source, e, strconv.Itoa(h), r.Matrix.Status(e, h)}
					if err := cw.Write(rec); err != nil {
						return fmt.Errorf("failed to write CSV record: %w", err)
					}
				}
			}
		}
		return nil
	})
}
