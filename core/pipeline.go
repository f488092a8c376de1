package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/runmatrix/core/agg"
	"github.com/huangsam/runmatrix/core/algo"
	"github.com/huangsam/runmatrix/core/validate"
	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
	"golang.org/x/sync/errgroup"
)

// Options selects what one pipeline run builds.
type Options struct {
	Source      string // Name of the source that served the batch
	Day         string // YYYY-MM-DD, empty keeps every day
	Project     string
	Status      string
	MaxEntities int
}

// Pipeline turns raw run batches into matrix reports. It holds the project
// extractor shared by every run, so one Pipeline can serve concurrent callers.
type Pipeline struct {
	extractor *algo.ProjectExtractor
	recorder  contract.MetricsRecorder
	log       *slog.Logger
}

// NewPipeline creates a pipeline. A nil extractor gets a default-sized one,
// a nil recorder disables metrics and a nil logger uses slog.Default().
func NewPipeline(extractor *algo.ProjectExtractor, recorder contract.MetricsRecorder, log *slog.Logger) *Pipeline {
	if extractor == nil {
		extractor = algo.NewProjectExtractor(algo.DefaultExtractorCacheSize)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{extractor: extractor, recorder: recorder, log: log}
}

// Run normalizes, validates and aggregates one raw batch. Absent raw columns
// are backfilled, so only a batch without start times is rejected outright.
// It never fails: problems come back as a report with OK unset and a message.
func (p *Pipeline) Run(raw *schema.Batch, opts Options) *schema.MatrixReport {
	start := time.Now()
	report := &schema.MatrixReport{
		RunID:     uuid.NewString(),
		Source:    opts.Source,
		Day:       opts.Day,
		Project:   orSentinel(opts.Project, schema.AllProjects),
		Status:    orSentinel(opts.Status, schema.AllStatuses),
		Matrix:    schema.EmptyMatrix(),
		Selectors: agg.BuildSelectors(nil),
	}
	log := p.log.With("run_id", report.RunID)
	report.Diagnostics.InputRows = raw.Len()
	defer func() {
		if p.recorder != nil {
			p.recorder.ObserveReport(report, time.Since(start))
		}
	}()

	if raw.Empty() {
		report.Message = "raw batch is empty"
		log.Warn("Raw runs rejected", "reason", report.Message)
		return report
	}
	if !raw.Has(schema.ColStartedAt) {
		report.Message = fmt.Sprintf("missing required columns: %s", schema.ColStartedAt)
		log.Warn("Raw runs rejected", "reason", report.Message, "rows", raw.Len())
		return report
	}

	normalized, nd := agg.Normalize(raw, agg.NormalizeOptions{
		Day:       opts.Day,
		Extractor: p.extractor,
		Logger:    log,
	})
	report.Diagnostics.DroppedTimestamps = nd.DroppedTimestamps
	report.Diagnostics.FilteredByDay = nd.FilteredByDay
	report.Diagnostics.DayFilterFailed = nd.DayFilterFailed
	report.Diagnostics.DegenerateKeys = nd.DegenerateKeys
	report.Diagnostics.Notes = append(report.Diagnostics.Notes, nd.Notes...)
	if nd.DroppedTimestamps == raw.Len() {
		report.Message = fmt.Sprintf("no rows with a valid start time (%d dropped)", nd.DroppedTimestamps)
		log.Warn("Raw runs rejected", "reason", report.Message, "rows", raw.Len())
		return report
	}

	// Normalize backfilled the raw columns, so the gate only repairs values.
	if !normalized.Empty() {
		rv := validate.Raw(normalized)
		if !rv.OK {
			report.Message = rv.Message
			log.Warn("Normalized runs failed the raw gate", "reason", rv.Message, "rows", normalized.Len())
			return report
		}
		normalized = rv.Payload
	}

	report.Selectors = agg.BuildSelectors(normalized)
	report.Summary = agg.Summarize(normalized)

	res := agg.BuildMatrix(normalized, agg.MatrixOptions{
		Project:     opts.Project,
		Status:      opts.Status,
		MaxEntities: opts.MaxEntities,
		Logger:      log,
	})
	report.OK = res.OK
	report.Message = res.Message
	report.Matrix = res.Matrix
	report.Diagnostics.DegenerateKeys += res.Diagnostics.DegenerateKeys
	report.Diagnostics.InvalidHours = res.Diagnostics.InvalidHours
	report.Diagnostics.RepairedKeys = res.Diagnostics.RepairedKeys
	report.Diagnostics.TotalEntities = res.Diagnostics.TotalEntities
	report.Diagnostics.CappedEntities = res.Diagnostics.CappedEntities

	log.Info("Built run matrix", "ok", report.OK, "entities", len(report.Matrix.Entities), "elapsed", time.Since(start))
	return report
}

// RunDays builds one report per day from the same raw batch, at most workers
// at a time. Reports come back in the order of days. No days means a single
// run over every day.
func (p *Pipeline) RunDays(ctx context.Context, raw *schema.Batch, opts Options, days []string, workers int) ([]*schema.MatrixReport, error) {
	if len(days) == 0 {
		return []*schema.MatrixReport{p.Run(raw, opts)}, nil
	}
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}

	reports := make([]*schema.MatrixReport, len(days))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, day := range days {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dayOpts := opts
			dayOpts.Day = day
			reports[i] = p.Run(raw, dayOpts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Extractor returns the project extractor shared by runs.
func (p *Pipeline) Extractor() *algo.ProjectExtractor {
	return p.extractor
}

func orSentinel(value, sentinel string) string {
	if value == "" {
		return sentinel
	}
	return value
}
