// Package core has core logic for validating, normalizing and aggregating runs.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/runmatrix/core/algo"
	"github.com/huangsam/runmatrix/core/validate"
	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/internal/logging"
	"github.com/huangsam/runmatrix/internal/outwriter"
	"github.com/huangsam/runmatrix/schema"
)

// ExecutorFunc defines the function signature for the commands that build from a run source.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, src contract.RunSource, rec contract.MetricsRecorder) error

// ExecuteMatrix fetches runs and prints one hourly status matrix per requested day.
// It serves as the main entry point for the 'matrix' command.
func ExecuteMatrix(ctx context.Context, cfg *contract.Config, src contract.RunSource, rec contract.MetricsRecorder) error {
	start := time.Now()
	reports, err := BuildReports(ctx, cfg, src, rec)
	if err != nil {
		return err
	}
	return outwriter.WriteReports(reports, cfg, time.Since(start))
}

// ExecuteFilters prints the project and status values available for filtering.
func ExecuteFilters(ctx context.Context, cfg *contract.Config, src contract.RunSource, rec contract.MetricsRecorder) error {
	report, err := BuildOverview(ctx, cfg, src, rec)
	if err != nil {
		return err
	}
	return outwriter.WriteSelectors(report.Selectors, cfg)
}

// ExecuteSummary prints headline statistics over the fetched runs.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, src contract.RunSource, rec contract.MetricsRecorder) error {
	report, err := BuildOverview(ctx, cfg, src, rec)
	if err != nil {
		return err
	}
	return outwriter.WriteSummary(report, cfg)
}

// ExecuteRepair reads a JSON matrix document and prints the repaired matrix with its verdict.
func ExecuteRepair(_ context.Context, cfg *contract.Config, path string) error {
	result, err := RepairMatrixFile(path)
	if err != nil {
		return err
	}
	return outwriter.WriteRepair(result, cfg)
}

// BuildReports fetches runs from src and builds the reports selected by cfg.
func BuildReports(ctx context.Context, cfg *contract.Config, src contract.RunSource, rec contract.MetricsRecorder) ([]*schema.MatrixReport, error) {
	raw, err := fetchRuns(ctx, src, rec)
	if err != nil {
		return nil, err
	}
	p := NewPipeline(algo.NewProjectExtractor(algo.DefaultExtractorCacheSize), rec, logging.New("core"))
	reports, err := p.RunDays(ctx, raw, optionsFrom(cfg, src), cfg.Days, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("build matrices: %w", err)
	}
	return reports, nil
}

// BuildOverview builds a single report over the first requested day,
// ignoring the project and status selectors.
func BuildOverview(ctx context.Context, cfg *contract.Config, src contract.RunSource, rec contract.MetricsRecorder) (*schema.MatrixReport, error) {
	raw, err := fetchRuns(ctx, src, rec)
	if err != nil {
		return nil, err
	}
	opts := Options{Source: src.Name(), MaxEntities: cfg.MaxEntities}
	if len(cfg.Days) > 0 {
		opts.Day = cfg.Days[0]
	}
	return NewPipeline(nil, rec, logging.New("core")).Run(raw, opts), nil
}

// fetchRuns pulls the raw batch from the source and records its size.
func fetchRuns(ctx context.Context, src contract.RunSource, rec contract.MetricsRecorder) (*schema.Batch, error) {
	raw, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch runs from %s: %w", src.Name(), err)
	}
	if rec != nil {
		rec.ObserveFetch(src.Name(), raw.Len())
	}
	logging.New("core").Debug("Fetched runs", "source", src.Name(), "rows", raw.Len())
	return raw, nil
}

// optionsFrom maps the validated config onto pipeline options.
func optionsFrom(cfg *contract.Config, src contract.RunSource) Options {
	return Options{
		Source:      src.Name(),
		Project:     cfg.Project,
		Status:      cfg.Status,
		MaxEntities: cfg.MaxEntities,
	}
}

// matrixDocument is the JSON shape accepted by RepairMatrixFile. Fields stay
// untyped so malformed documents reach the validator instead of failing to decode.
type matrixDocument struct {
	Cells    any `json:"cells"`
	Entities any `json:"entities"`
	Hours    any `json:"hours"`
}

// RepairMatrixFile decodes a JSON matrix document and runs the matrix validator on it.
func RepairMatrixFile(path string) (schema.RepairResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.RepairResult{}, fmt.Errorf("read matrix file: %w", err)
	}
	return RepairMatrixJSON(path, data)
}

// RepairMatrixJSON runs the matrix validator on an encoded matrix document.
func RepairMatrixJSON(name string, data []byte) (schema.RepairResult, error) {
	var doc matrixDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return schema.RepairResult{}, fmt.Errorf("decode matrix %s: %w", name, err)
	}
	v := validate.Matrix(doc.Cells, doc.Entities, doc.Hours)
	return schema.RepairResult{Path: name, OK: v.OK, Message: v.Message, Matrix: v.Payload}, nil
}
