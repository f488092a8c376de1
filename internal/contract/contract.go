// Package contract provides interfaces and shared utilities for the runmatrix internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/runmatrix/schema"
)

// RunSource delivers a batch of raw run records.
// This allows the pipeline to be tested without a database or files.
type RunSource interface {
	// Name identifies the source in logs and reports (e.g. "sqlite", "csv").
	Name() string

	// Fetch returns the raw runs the source currently holds.
	Fetch(ctx context.Context) (*schema.Batch, error)
}

// RunStore is a RunSource backed by a database that can also report on and
// receive runs.
type RunStore interface {
	RunSource

	// Insert writes runs into the run history table.
	Insert(ctx context.Context, runs *schema.Batch) (int, error)

	// GetStatus returns connection and table information.
	GetStatus(ctx context.Context) (schema.SourceStatus, error)

	Close() error
}

// MetricsRecorder observes pipeline outcomes.
type MetricsRecorder interface {
	// ObserveFetch records how many raw runs a source delivered.
	ObserveFetch(source string, runs int)

	// ObserveReport records a finished matrix build and how long it took.
	ObserveReport(report *schema.MatrixReport, elapsed time.Duration)
}
