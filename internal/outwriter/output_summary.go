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

// summaryDocument is the structured form of a summary with its provenance.
type summaryDocument struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	Source      string             `json:"source" yaml:"source"`
	Day         string             `json:"day,omitempty" yaml:"day,omitempty"`
	Summary     schema.Summary     `json:"summary" yaml:"summary"`
	Diagnostics schema.Diagnostics `json:"diagnostics" yaml:"diagnostics"`
}

// WriteSummary outputs the headline statistics of a report.
func WriteSummary(report *schema.MatrixReport, cfg *contract.Config) error {
	doc := summaryDocument{
		RunID:       report.RunID,
		Source:      report.Source,
		Day:         report.Day,
		Summary:     report.Summary,
		Diagnostics: report.Diagnostics,
	}
	if ok, err := writeStructured(cfg, doc); ok {
		return err
	}
	switch cfg.Output {
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, report.Summary)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteSummaryCountsParquet(parquet.SummaryCountsFromReport(report), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTable(w, report, cfg)
		}, "Wrote table")
	}
}

// writeSummaryCSV writes the summary as metric/name/value rows.
func writeSummaryCSV(w io.Writer, s schema.Summary) error {
	return writeCSVWithHeader(w, []string{"metric", "name", "value"}, func(cw *csv.Writer) error {
		rows := [][]string{
			{"total_runs", "", strconv.Itoa(s.TotalRuns)},
			{"entities", "", strconv.Itoa(s.Entities)},
			{"projects", "", strconv.Itoa(s.Projects)},
			{"success_rate", "", strconv.FormatFloat(s.SuccessRate, 'f', 1, 64)},
			{"first_run", "", formatTime(s.FirstRun)},
			{"last_run", "", formatTime(s.LastRun)},
		}
		for _, c := range s.StatusDistribution {
			rows = append(rows, []string{"status", c.Name, strconv.Itoa(c.Count)})
		}
		for _, c := range s.TopProjects {
			rows = append(rows, []string{"project", c.Name, strconv.Itoa(c.Count)})
		}
		for _, r := range rows {
			if err := cw.Write(r); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeSummaryTable prints the headline numbers, then the status and project counts.
func writeSummaryTable(w io.Writer, r *schema.MatrixReport, cfg *contract.Config) error {
	s := r.Summary
	lines := []string{
		fmt.Sprintf("📊 Run summary from %s", r.Source),
		fmt.Sprintf("  Total runs:   %d", s.TotalRuns),
		fmt.Sprintf("  Entities:     %d", s.Entities),
		fmt.Sprintf("  Projects:     %d", s.Projects),
		fmt.Sprintf("  Success rate: %.1f%%", s.SuccessRate),
		fmt.Sprintf("  Time span:    %s to %s", formatTime(s.FirstRun), formatTime(s.LastRun)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Status", "Runs"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, c := range s.StatusDistribution {
		label := c.Name
		if cfg.UseEmojis {
			label = contract.GetStatusGlyph(c.Name) + " " + c.Name
		}
		data = append(data, []string{label, strconv.Itoa(c.Count)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	projects := tablewriter.NewWriter(w)
	projects.Header([]string{"Project", "Runs"})
	data = data[:0]
	for _, c := range s.TopProjects {
		data = append(data, []string{c.Name, strconv.Itoa(c.Count)})
	}
	if err := projects.Bulk(data); err != nil {
		return err
	}
	return projects.Render()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format(time.RFC3339)
}
