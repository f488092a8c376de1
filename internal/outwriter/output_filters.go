package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteSelectors outputs the project and status filter values.
func WriteSelectors(sel schema.Selectors, cfg *contract.Config) error {
	if ok, err := writeStructured(cfg, sel); ok {
		return err
	}
	switch cfg.Output {
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSelectorsCSV(w, sel)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for filter values")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSelectorsTable(w, sel)
		}, "Wrote table")
	}
}

func writeSelectorsCSV(w io.Writer, sel schema.Selectors) error {
	return writeCSVWithHeader(w, []string{"kind", "value"}, func(cw *csv.Writer) error {
		for _, p := range sel.Projects {
			if err := cw.Write([]string{"project", p}); err != nil {
				return err
			}
		}
		for _, s := range sel.Statuses {
			if err := cw.Write([]string{"status", s}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeSelectorsTable lays projects and statuses side by side.
func writeSelectorsTable(w io.Writer, sel schema.Selectors) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Project", "Status"})
	rows := max(len(sel.Projects), len(sel.Statuses))
	data := make([][]string, rows)
	for i := range rows {
		row := []string{"", ""}
		if i < len(sel.Projects) {
			row[0] = sel.Projects[i]
		}
		if i < len(sel.Statuses) {
			row[1] = sel.Statuses[i]
		}
		data[i] = row
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
