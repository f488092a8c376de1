// Package metrics counts what the matrix pipeline ingests, drops and builds.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "runmatrix"

// Reasons a raw row never reaches the matrix.
const (
	DroppedTimestamp  = "timestamp"
	DroppedDayFilter  = "day_filter"
	DroppedDegenerate = "degenerate_key"
	DroppedHour       = "invalid_hour"
)

// Matrix verdicts.
const (
	VerdictOK       = "ok"
	VerdictRejected = "rejected"
)

var buildBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Recorder implements contract.MetricsRecorder on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	runsIngested   *prometheus.CounterVec
	rowsDropped    *prometheus.CounterVec
	entitiesCapped prometheus.Counter
	matricesBuilt  *prometheus.CounterVec
	buildDuration  prometheus.Histogram
	lastBuild      *prometheus.GaugeVec

	mu sync.Mutex // serializes lastBuild reset and set
}

var _ contract.MetricsRecorder = &Recorder{} // Compile-time check

// NewRecorder creates a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_ingested_total",
			Help:      "Raw runs delivered by run sources",
		}, []string{"source"}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows removed before aggregation",
		}, []string{"reason"}),
		entitiesCapped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_capped_total",
			Help:      "Entities hidden by the max-entities cap",
		}),
		matricesBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matrices_built_total",
			Help:      "Matrix builds by verdict",
		}, []string{"verdict"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matrix_build_duration_seconds",
			Help:      "Time to validate, normalize and aggregate one batch",
			Buckets:   buildBuckets,
		}),
		lastBuild: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Completion time of the most recent matrix build",
		}, []string{"run_id", "source"}),
	}
	r.registry.MustRegister(r.runsIngested, r.rowsDropped, r.entitiesCapped, r.matricesBuilt, r.buildDuration, r.lastBuild)
	return r
}

// Registry exposes the recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveFetch counts the runs a source delivered.
func (r *Recorder) ObserveFetch(source string, runs int) {
	r.runsIngested.WithLabelValues(source).Add(float64(runs))
}

// ObserveReport counts one finished build.
func (r *Recorder) ObserveReport(report *schema.MatrixReport, elapsed time.Duration) {
	if report == nil {
		return
	}
	d := report.Diagnostics
	r.addDropped(DroppedTimestamp, d.DroppedTimestamps)
	r.addDropped(DroppedDayFilter, d.FilteredByDay)
	r.addDropped(DroppedDegenerate, d.DegenerateKeys)
	r.addDropped(DroppedHour, d.InvalidHours)
	if d.CappedEntities > 0 {
		r.entitiesCapped.Add(float64(d.CappedEntities))
	}

	verdict := VerdictOK
	if !report.OK {
		verdict = VerdictRejected
	}
	r.matricesBuilt.WithLabelValues(verdict).Inc()
	r.buildDuration.Observe(elapsed.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastBuild.Reset()
	r.lastBuild.WithLabelValues(report.RunID, report.Source).SetToCurrentTime()
}

func (r *Recorder) addDropped(reason string, n int) {
	if n > 0 {
		r.rowsDropped.WithLabelValues(reason).Add(float64(n))
	}
}

// WriteFile writes every collected metric to path in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
