// Package validate has the best-effort gates that run between pipeline stages.
// Each gate repairs what it can and reports a verdict instead of failing hard.
package validate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/runmatrix/schema"
)

// Verdict is the outcome of a gate: whether the input passed, why, and the
// repaired payload. Payload may be nil only when OK is false.
type Verdict[T any] struct {
	OK      bool
	Message string
	Payload T
	Dropped int
}

func pass[T any](msg string, payload T, dropped int) Verdict[T] {
	return Verdict[T]{OK: true, Message: msg, Payload: payload, Dropped: dropped}
}

func fail[T any](msg string, payload T) Verdict[T] {
	return Verdict[T]{Message: msg, Payload: payload}
}

// Raw checks that a raw batch carries the required columns and returns a
// repaired copy: timestamps coerced with unparseable rows dropped, missing
// status set to "No Run", owner and trigger type defaulted and the success
// flag derived where absent.
func Raw(b *schema.Batch) Verdict[*schema.Batch] {
	if b.Empty() {
		return fail[*schema.Batch]("raw batch is empty", nil)
	}
	if missing := b.Missing(schema.RequiredRawColumns...); len(missing) > 0 {
		return fail[*schema.Batch](fmt.Sprintf("missing required columns: %s", joinColumns(missing)), nil)
	}

	out := schema.NewBatch(b.Columns...)
	for _, c := range schema.ProcessColumns {
		out.AddColumn(c)
	}
	dropped := 0
	for _, r := range b.Rows {
		started, ok := schema.AsTime(r[schema.ColStartedAt])
		if !ok {
			dropped++
			continue
		}
		rec := r.Clone()
		rec[schema.ColStartedAt] = started
		if strings.TrimSpace(rec.String(schema.ColTaskStatus)) == "" {
			rec[schema.ColTaskStatus] = schema.StatusNoRun
		}
		if strings.TrimSpace(rec.String(schema.ColFlowOwner)) == "" {
			rec[schema.ColFlowOwner] = schema.Unknown
		}
		if strings.TrimSpace(rec.String(schema.ColTriggerType)) == "" {
			rec[schema.ColTriggerType] = schema.UnknownTrigger
		}
		rec[schema.ColWasSuccessful] = schema.SuccessFlag(rec)
		out.Rows = append(out.Rows, rec)
	}

	if out.Empty() {
		return Verdict[*schema.Batch]{Message: fmt.Sprintf("no rows with a valid start time (%d dropped)", dropped), Payload: out, Dropped: dropped}
	}
	msg := "raw batch is valid"
	if dropped > 0 {
		msg = fmt.Sprintf("raw batch is valid after dropping %d rows with invalid start time", dropped)
	}
	return pass(msg, out, dropped)
}

// Normalized makes sure a normalized batch carries everything the matrix
// builder reads, synthesizing absent columns. It fails only on empty input.
func Normalized(b *schema.Batch) Verdict[*schema.Batch] {
	if b.Empty() {
		return fail[*schema.Batch]("normalized batch is empty", nil)
	}

	out := b.Clone()
	var repaired []schema.Column
	if !out.Has(schema.ColOwner) {
		repaired = append(repaired, schema.ColOwner)
		out.Fill(schema.ColOwner, func(r schema.Record) any {
			if owner := r.String(schema.ColFlowOwner); strings.TrimSpace(owner) != "" {
				return owner
			}
			return schema.Unknown
		})
	}
	for _, c := range []schema.Column{schema.ColProject, schema.ColFlowName, schema.ColTaskStatus, schema.ColStartedAt} {
		if !out.Has(c) {
			repaired = append(repaired, c)
			out.Fill(c, func(schema.Record) any { return schema.Unknown })
		}
	}
	if !out.Has(schema.ColHour) {
		repaired = append(repaired, schema.ColHour)
		out.Fill(schema.ColHour, func(r schema.Record) any {
			if t, ok := schema.AsTime(r[schema.ColStartedAt]); ok {
				return t.Hour()
			}
			return nil
		})
	}
	if !out.Has(schema.ColDisplayKey) {
		repaired = append(repaired, schema.ColDisplayKey)
		out.Fill(schema.ColDisplayKey, func(r schema.Record) any {
			return schema.ComposeDisplayKey(r.String(schema.ColOwner), r.String(schema.ColProject), r.String(schema.ColFlowName))
		})
	}
	if !out.Has(schema.ColSuccessRate) && (out.Has(schema.ColWasSuccessful) || out.Has(schema.ColTaskStatus)) {
		repaired = append(repaired, schema.ColSuccessRate)
		out.FillSuccessRate()
	}

	if len(repaired) == 0 {
		return pass("normalized batch is valid", out, 0)
	}
	return pass(fmt.Sprintf("normalized batch is valid after synthesizing %s", joinColumns(repaired)), out, 0)
}

// Matrix repairs a matrix given as untyped parts, as decoded from JSON or
// assembled by the builder. A cells value that is not a mapping fails with an
// empty matrix. Entities that are not a list are recovered from the cells
// keys. Hours outside 0..23 are dropped, falling back to the full day. Every
// kept entity gets a string status for every hour, "No Run" by default. It
// passes iff at least one entity survives.
func Matrix(cells, entities, hours any) Verdict[*schema.Matrix] {
	cellMap, ok := asCells(cells)
	if !ok {
		return fail("cells is not a mapping", schema.EmptyMatrix())
	}

	names, _ := asList(entities)
	if len(names) == 0 && len(cellMap) > 0 {
		for k := range cellMap {
			names = append(names, k)
		}
		slices.SortFunc(names, func(a, b any) int { return strings.Compare(a.(string), b.(string)) })
	}
	if len(names) == 0 {
		return fail("no entities to show", schema.EmptyMatrix())
	}

	axis := asHours(hours)

	m := &schema.Matrix{Entities: []string{}, Hours: axis, Cells: map[string]map[int]string{}}
	for _, n := range names {
		name, ok := n.(string)
		if !ok || name == "" {
			continue
		}
		if _, dup := m.Cells[name]; dup {
			continue
		}
		given := asHourMap(cellMap[name])
		row := make(map[int]string, len(axis))
		for _, h := range axis {
			status, ok := given[h].(string)
			if !ok || status == "" {
				status = schema.StatusNoRun
			}
			row[h] = status
		}
		m.Cells[name] = row
		m.Entities = append(m.Entities, name)
	}

	if len(m.Entities) == 0 {
		return fail("no valid entity names", m)
	}
	return pass("matrix is valid", m, len(names)-len(m.Entities))
}

// asCells accepts the mapping shapes a cells value may arrive in.
func asCells(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, true
	case map[string]map[int]string:
		out := make(map[string]any, len(x))
		for k, row := range x {
			out[k] = row
		}
		return out, true
	case map[string]map[string]string:
		out := make(map[string]any, len(x))
		for k, row := range x {
			out[k] = row
		}
		return out, true
	case map[string]map[string]any:
		out := make(map[string]any, len(x))
		for k, row := range x {
			out[k] = row
		}
		return out, true
	default:
		return nil, false
	}
}

// asList accepts the list shapes an entity list may arrive in.
func asList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return slices.Clone(x), true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// asHours returns the valid, de-duplicated hours of v, or the full day when
// v is not a non-empty list or none of its hours are valid.
func asHours(v any) []int {
	var raw []any
	switch x := v.(type) {
	case []int:
		for _, h := range x {
			raw = append(raw, h)
		}
	case []any:
		raw = x
	}
	var out []int
	for _, h := range raw {
		n, ok := hourValue(h)
		if ok && schema.ValidHour(n) && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return schema.DayHours()
	}
	return out
}

// hourValue accepts integers and integral floats; text is not an hour.
func hourValue(v any) (int, bool) {
	switch v.(type) {
	case string, []byte, bool:
		return 0, false
	}
	return schema.AsInt(v)
}

// asHourMap accepts the per-entity mapping shapes. Text keys must be integers.
// Anything else is treated as an empty mapping.
func asHourMap(v any) map[int]any {
	out := map[int]any{}
	switch x := v.(type) {
	case map[int]string:
		for h, s := range x {
			out[h] = s
		}
	case map[int]any:
		for h, s := range x {
			out[h] = s
		}
	case map[string]string:
		for k, s := range x {
			if h, err := strconv.Atoi(k); err == nil {
				out[h] = s
			}
		}
	case map[string]any:
		for k, s := range x {
			if h, err := strconv.Atoi(k); err == nil {
				out[h] = s
			}
		}
	}
	return out
}

func joinColumns(cols []schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
