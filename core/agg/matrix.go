package agg

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/huangsam/runmatrix/core/algo"
	"github.com/huangsam/runmatrix/core/validate"
	"github.com/huangsam/runmatrix/schema"
)

// MatrixOptions controls BuildMatrix.
type MatrixOptions struct {
	// Project keeps only runs of this project. Empty or "All Projects" keeps all.
	Project string
	// Status keeps only runs with this exact status. Empty or "All Statuses" keeps all.
	Status string
	// MaxEntities caps the entity list. Non-positive uses schema.DefaultMaxEntities.
	MaxEntities int
	Logger      *slog.Logger
}

// MatrixResult is a built matrix with its verdict.
type MatrixResult struct {
	OK          bool
	Message     string
	Matrix      *schema.Matrix
	Diagnostics schema.Diagnostics
}

// matrixColumns are read by the builder.
var matrixColumns = []schema.Column{schema.ColDisplayKey, schema.ColProject, schema.ColTaskStatus, schema.ColHour}

// BuildMatrix aggregates a normalized batch into the hourly status matrix.
// Each (entity, hour) bucket reduces to its highest-priority status, emitted
// in the canonical vocabulary. When there are more entities than allowed the
// most interesting ones are kept, scored by failed and running runs. The
// result always holds a structurally valid matrix, empty when nothing could
// be built.
func BuildMatrix(b *schema.Batch, opts MatrixOptions) MatrixResult {
	log := loggerOr(opts.Logger)
	res := MatrixResult{Matrix: schema.EmptyMatrix(), Diagnostics: schema.Diagnostics{InputRows: b.Len()}}
	limit := opts.MaxEntities
	if limit <= 0 {
		limit = schema.DefaultMaxEntities
	}

	v := validate.Normalized(b)
	if !v.OK || v.Payload == nil {
		res.Message = v.Message
		return res
	}
	batch := v.Payload
	if missing := batch.Missing(matrixColumns...); len(missing) > 0 {
		res.Message = fmt.Sprintf("cannot build matrix without %v", missing)
		log.Warn("Matrix columns missing", "columns", missing)
		return res
	}

	filtered := batch.Filter(selectorMask(opts.Project, opts.Status))
	rows := filtered.Filter(func(r schema.Record) bool {
		return schema.UsableDisplayKey(r.String(schema.ColDisplayKey))
	})
	if rows.Empty() && !filtered.Empty() {
		rows = repairDisplayKeys(filtered)
		res.Diagnostics.RepairedKeys = true
		log.Warn("Rebuilt display keys", "rows", filtered.Len(), "usable", rows.Len())
	}
	res.Diagnostics.DegenerateKeys = filtered.Len() - rows.Len()
	if rows.Empty() {
		res.Message = "no runs match the selected filters"
		return res
	}

	tally := algo.NewActivityTally()
	for _, r := range rows.Rows {
		tally.Observe(r.String(schema.ColDisplayKey), r.String(schema.ColTaskStatus))
	}
	res.Diagnostics.TotalEntities = tally.Len()
	entities := tally.Keys()
	if tally.Len() > limit {
		entities = tally.Top(limit)
		res.Diagnostics.CappedEntities = tally.Len() - limit
		log.Info("Capped entities by interestingness", "entities", tally.Len(), "kept", limit)
	}

	cells := make(map[string]map[int]string, len(entities))
	for _, e := range entities {
		row := make(map[int]string, schema.HoursPerDay)
		for _, h := range schema.DayHours() {
			row[h] = schema.StatusNoRun
		}
		cells[e] = row
	}

	buckets := make(map[string]map[int][]string, len(entities))
	for _, r := range rows.Rows {
		key := r.String(schema.ColDisplayKey)
		if _, kept := cells[key]; !kept {
			continue
		}
		h, ok := schema.HourOf(r)
		if !ok {
			res.Diagnostics.InvalidHours++
			continue
		}
		if buckets[key] == nil {
			buckets[key] = make(map[int][]string)
		}
		buckets[key][h] = append(buckets[key][h], r.String(schema.ColTaskStatus))
	}
	for key, hours := range buckets {
		for h, statuses := range hours {
			cells[key][h] = schema.CanonicalStatus(algo.ReduceStatuses(statuses))
		}
	}
	if res.Diagnostics.InvalidHours > 0 {
		log.Warn("Skipped runs with invalid hour", "rows", res.Diagnostics.InvalidHours)
	}

	built := &schema.Matrix{Entities: entities, Hours: schema.DayHours(), Cells: cells}
	mv := validate.Matrix(cells, entities, built.Hours)
	switch {
	case mv.OK:
		res.OK, res.Matrix = true, mv.Payload
		res.Message = fmt.Sprintf("built matrix with %d entities", len(mv.Payload.Entities))
	case !mv.Payload.Empty():
		res.Matrix = mv.Payload
		res.Message = mv.Message
	case !built.Empty():
		res.Matrix = built
		res.Message = mv.Message
	default:
		res.Message = mv.Message
	}
	return res
}

// selectorMask combines the project and status filters. Sentinels disable
// their filter.
func selectorMask(project, status string) func(schema.Record) bool {
	project = strings.TrimSpace(project)
	status = strings.TrimSpace(status)
	return func(r schema.Record) bool {
		if project != "" && project != schema.AllProjects && r.String(schema.ColProject) != project {
			return false
		}
		if status != "" && status != schema.AllStatuses && r.String(schema.ColTaskStatus) != status {
			return false
		}
		return true
	}
}

// repairDisplayKeys rebuilds display keys from owner, project and flow name,
// keeping only rows whose rebuilt key is usable.
func repairDisplayKeys(b *schema.Batch) *schema.Batch {
	out := schema.NewBatch(b.Columns...)
	for _, r := range b.Rows {
		key := schema.ComposeDisplayKey(r.String(schema.ColOwner), r.String(schema.ColProject), r.String(schema.ColFlowName))
		if !schema.UsableDisplayKey(key) {
			continue
		}
		rec := r.Clone()
		rec[schema.ColDisplayKey] = key
		out.Rows = append(out.Rows, rec)
	}
	return out
}
