// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReports prints matrix reports using the configured output format.
func (ow *OutWriter) WriteReports(reports []*schema.MatrixReport, cfg *contract.Config, duration time.Duration) error {
	return WriteReports(reports, cfg, duration)
}

// WriteSelectors prints filter selectors using the configured output format.
func (ow *OutWriter) WriteSelectors(sel schema.Selectors, cfg *contract.Config) error {
	return WriteSelectors(sel, cfg)
}

// WriteSummary prints run statistics using the configured output format.
func (ow *OutWriter) WriteSummary(report *schema.MatrixReport, cfg *contract.Config) error {
	return WriteSummary(report, cfg)
}

// WriteRepair prints a matrix repair verdict using the configured output format.
func (ow *OutWriter) WriteRepair(result schema.RepairResult, cfg *contract.Config) error {
	return WriteRepair(result, cfg)
}

// WriteSourceStatus prints run source status using the configured output format.
func (ow *OutWriter) WriteSourceStatus(status schema.SourceStatus, cfg *contract.Config) error {
	return WriteSourceStatus(status, cfg)
}
