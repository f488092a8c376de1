package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
)

// csvPattern matches run history exports.
const csvPattern = "flow_data_*.csv"

// ErrNoCSVFiles is returned when no export is found in the search dirs.
var ErrNoCSVFiles = errors.New("no flow_data_*.csv files found")

// CSVSource reads the newest run history export from a set of directories.
type CSVSource struct {
	dirs []string
}

var _ contract.RunSource = &CSVSource{} // Compile-time check

// NewCSVSource creates a source searching dirs in order.
func NewCSVSource(dirs []string) *CSVSource {
	if len(dirs) == 0 {
		dirs = contract.DefaultCSVDirs
	}
	return &CSVSource{dirs: dirs}
}

// Name returns "csv".
func (c *CSVSource) Name() string {
	return string(schema.CSVSource)
}

// Fetch loads every row of the newest export. Headers are mapped onto
// canonical columns and empty cells are left unset.
func (c *CSVSource) Fetch(ctx context.Context) (*schema.Batch, error) {
	path, err := c.LatestFile()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadCSVFile(path)
}

// LatestFile returns the most recently modified export across the search dirs.
func (c *CSVSource) LatestFile() (string, error) {
	var newest string
	var newestMod time.Time
	for _, dir := range c.dirs {
		matches, err := filepath.Glob(filepath.Join(dir, csvPattern))
		if err != nil {
			return "", fmt.Errorf("failed to search %s: %w", dir, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			if newest == "" || info.ModTime().After(newestMod) {
				newest, newestMod = m, info.ModTime()
			}
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w in %s", ErrNoCSVFiles, strings.Join(c.dirs, ", "))
	}
	return newest, nil
}

// ReadCSVFile parses one export into a batch.
func ReadCSVFile(path string) (*schema.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	batch, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return batch, nil
}

// ReadCSV parses CSV text whose first record is the header.
func ReadCSV(r io.Reader) (*schema.Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return schema.NewBatch(), nil
	}
	if err != nil {
		return nil, err
	}

	cols := make([]schema.Column, len(header))
	for i, h := range header {
		cols[i] = schema.CanonicalColumn(strings.TrimPrefix(h, "\ufeff"))
	}
	batch := schema.NewBatch(cols...)

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := make(schema.Record, len(cols))
		for i, v := range fields {
			if i >= len(cols) {
				break
			}
			if v = strings.TrimSpace(v); v != "" {
				rec[cols[i]] = v
			}
		}
		batch.Rows = append(batch.Rows, rec)
	}
	return batch, nil
}
