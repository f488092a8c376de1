// Package schema has the records, matrix and shared constants for all parts of runmatrix.
package schema

import (
	"slices"
	"strings"
)

// Column names a field of a run record. Raw columns use the source-system
// spelling; derived columns are added by normalization.
type Column string

// Raw columns delivered by a run source.
const (
	ColFlowName      Column = "flowname"
	ColFlowOwner     Column = "flowowner"
	ColStartedAt     Column = "datetimestarted"
	ColCompletedAt   Column = "datetimecompleted"
	ColTaskStatus    Column = "taskstatus"
	ColTriggerType   Column = "triggertype"
	ColWasSuccessful Column = "wassuccessful"
)

// Derived columns added by normalization.
const (
	ColHour         Column = "hour"
	ColOwner        Column = "owner"
	ColProject      Column = "automation_project"
	ColDisplayKey   Column = "display_name"
	ColTriggerGroup Column = "trigger_group"
	ColSuccessRate  Column = "success_rate"
)

// RequiredRawColumns must be present for a raw batch to pass validation.
var RequiredRawColumns = []Column{ColFlowName, ColFlowOwner, ColStartedAt, ColTaskStatus}

// ProcessColumns are backfilled by normalization when a source omits them.
var ProcessColumns = []Column{ColFlowName, ColFlowOwner, ColStartedAt, ColTaskStatus, ColTriggerType, ColWasSuccessful}

// columnAliases maps folded header spellings onto canonical raw columns.
var columnAliases = map[string]Column{
	"flowname":          ColFlowName,
	"flow":              ColFlowName,
	"flowowner":         ColFlowOwner,
	"datetimestarted":   ColStartedAt,
	"startedat":         ColStartedAt,
	"starttime":         ColStartedAt,
	"started":           ColStartedAt,
	"datetimecompleted": ColCompletedAt,
	"completedat":       ColCompletedAt,
	"endtime":           ColCompletedAt,
	"taskstatus":        ColTaskStatus,
	"status":            ColTaskStatus,
	"triggertype":       ColTriggerType,
	"trigger":           ColTriggerType,
	"wassuccessful":     ColWasSuccessful,
	"success":           ColWasSuccessful,
}

// CanonicalColumn maps a source header such as "flow_name" or "StartedAt" onto
// a canonical column. Unrecognized headers keep their lower-cased spelling.
func CanonicalColumn(header string) Column {
	folded := strings.ToLower(strings.TrimSpace(header))
	key := strings.NewReplacer("_", "", " ", "", "-", "").Replace(folded)
	if c, ok := columnAliases[key]; ok {
		return c
	}
	return Column(folded)
}

// Record is one automation run. Values are whatever the source delivered:
// strings, numbers, booleans, time.Time or nil.
type Record map[Column]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the column as a string, or "" when absent or not textual.
func (r Record) String(col Column) string {
	s, _ := AsString(r[col])
	return s
}

// Batch is a tabular set of run records sharing a declared column set.
// A column may be declared while individual rows lack a value for it.
type Batch struct {
	Columns []Column
	Rows    []Record
}

// NewBatch creates an empty batch declaring the given columns.
func NewBatch(cols ...Column) *Batch {
	b := &Batch{}
	for _, c := range cols {
		b.AddColumn(c)
	}
	return b
}

// Len returns the number of rows, treating a nil batch as empty.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// Empty reports whether the batch is nil or has no rows.
func (b *Batch) Empty() bool {
	return b.Len() == 0
}

// Has reports whether the column is declared.
func (b *Batch) Has(col Column) bool {
	return b != nil && slices.Contains(b.Columns, col)
}

// Missing returns the subset of cols that are not declared.
func (b *Batch) Missing(cols ...Column) []Column {
	var out []Column
	for _, c := range cols {
		if !b.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// AddColumn declares a column if it is not already declared.
func (b *Batch) AddColumn(col Column) {
	if !b.Has(col) {
		b.Columns = append(b.Columns, col)
	}
}

// Append adds a record, declaring any columns it introduces.
func (b *Batch) Append(r Record) {
	for c := range r {
		b.AddColumn(c)
	}
	b.Rows = append(b.Rows, r)
}

// Clone returns a copy whose rows can be modified without touching b.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return NewBatch()
	}
	out := &Batch{
		Columns: slices.Clone(b.Columns),
		Rows:    make([]Record, len(b.Rows)),
	}
	for i, r := range b.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Filter returns a batch with the same columns holding only rows where keep is true.
// Rows are shared with b.
func (b *Batch) Filter(keep func(Record) bool) *Batch {
	out := &Batch{Columns: slices.Clone(b.Columns)}
	for _, r := range b.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Fill sets col on every row from fn and declares the column.
func (b *Batch) Fill(col Column, fn func(Record) any) {
	b.AddColumn(col)
	for _, r := range b.Rows {
		r[col] = fn(r)
	}
}
