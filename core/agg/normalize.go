// Package agg has the normalization, hourly aggregation and summary logic for runmatrix.
package agg

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/huangsam/runmatrix/core/algo"
	"github.com/huangsam/runmatrix/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ServiceAccountMarker is stripped from raw owner names.
const ServiceAccountMarker = " serviceaccount"

// NormalizeOptions controls Normalize.
type NormalizeOptions struct {
	// Day keeps only runs started on this calendar date (YYYY-MM-DD). Empty keeps all.
	Day string
	// Extractor derives project labels. Nil builds a private one.
	Extractor *algo.ProjectExtractor
	Logger    *slog.Logger
}

// derivation computes one derived column. Rows where fn reports false take
// the fallback value instead.
type derivation struct {
	col      schema.Column
	fn       func(schema.Record) (any, bool)
	fallback any
}

// Normalize turns a raw batch into a normalized one: absent raw columns are
// backfilled, rows without a parseable start time are dropped, the optional
// day filter is applied and the derived columns are computed. The input is
// not modified. An empty batch comes back on empty input.
func Normalize(raw *schema.Batch, opts NormalizeOptions) (*schema.Batch, schema.Diagnostics) {
	log := loggerOr(opts.Logger)
	diag := schema.Diagnostics{InputRows: raw.Len()}
	if raw.Empty() {
		diag.Note("no runs to normalize")
		return schema.NewBatch(), diag
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = algo.NewProjectExtractor(0)
	}

	b := raw.Clone()
	backfill(b, log)

	b = b.Filter(func(r schema.Record) bool {
		t, ok := schema.AsTime(r[schema.ColStartedAt])
		if !ok {
			diag.DroppedTimestamps++
			return false
		}
		r[schema.ColStartedAt] = t
		return true
	})
	if diag.DroppedTimestamps > 0 {
		log.Warn("Dropped runs with invalid start time", "dropped", diag.DroppedTimestamps, "rows", diag.InputRows)
	}

	if opts.Day != "" {
		b = filterDay(b, opts.Day, &diag, log)
	}
	if b.Empty() {
		diag.Note("no runs left after timestamp and day filtering")
		return b, diag
	}

	title := cases.Title(language.Und)
	for _, d := range []derivation{
		{schema.ColHour, deriveHour, nil},
		{schema.ColOwner, func(r schema.Record) (any, bool) { return deriveOwner(title, r) }, schema.Unknown},
		{schema.ColProject, func(r schema.Record) (any, bool) { return extractor.ExtractValue(r[schema.ColFlowName]), true }, schema.Unknown},
		{schema.ColDisplayKey, deriveDisplayKey, ""},
		{schema.ColTriggerGroup, deriveTriggerGroup, string(schema.OtherTrigger)},
	} {
		applyDerivation(b, d, log)
	}
	b.FillSuccessRate()

	b = b.Filter(func(r schema.Record) bool {
		if key := r.String(schema.ColDisplayKey); !schema.UsableDisplayKey(key) {
			diag.DegenerateKeys++
			return false
		}
		return true
	})
	if diag.DegenerateKeys > 0 {
		log.Warn("Excluded runs without a usable display key", "excluded", diag.DegenerateKeys)
	}

	log.Debug("Normalized runs", "input", diag.InputRows, "output", b.Len())
	return b, diag
}

// backfill declares the process columns a source omitted.
func backfill(b *schema.Batch, log *slog.Logger) {
	for _, col := range b.Missing(schema.ProcessColumns...) {
		log.Debug("Backfilling missing column", "column", col)
		switch col {
		case schema.ColWasSuccessful:
			b.Fill(col, func(r schema.Record) any { return schema.SuccessFlag(r) })
		case schema.ColTriggerType:
			b.Fill(col, func(schema.Record) any { return schema.UnknownTrigger })
		case schema.ColTaskStatus:
			b.Fill(col, func(schema.Record) any { return schema.StatusNoRun })
		default:
			b.Fill(col, func(schema.Record) any { return nil })
		}
	}
}

// filterDay keeps the runs started on day. An unparseable day leaves the
// batch untouched.
func filterDay(b *schema.Batch, day string, diag *schema.Diagnostics, log *slog.Logger) *schema.Batch {
	want, ok := schema.ParseTimestamp(day)
	if !ok {
		diag.DayFilterFailed = true
		diag.Note(fmt.Sprintf("day filter %q is not a date; showing all days", day))
		log.Warn("Ignoring unparseable day filter", "day", day)
		return b
	}
	y, m, d := want.Date()
	before := b.Len()
	out := b.Filter(func(r schema.Record) bool {
		ry, rm, rd := r[schema.ColStartedAt].(time.Time).Date()
		return ry == y && rm == m && rd == d
	})
	diag.FilteredByDay = before - out.Len()
	return out
}

// applyDerivation fills one derived column, logging how many rows fell back.
func applyDerivation(b *schema.Batch, d derivation, log *slog.Logger) {
	fallbacks := 0
	b.Fill(d.col, func(r schema.Record) any {
		v, ok := d.fn(r)
		if !ok {
			fallbacks++
			return d.fallback
		}
		return v
	})
	if fallbacks > 0 {
		log.Warn("Derived column fell back to default", "column", d.col, "rows", fallbacks)
	}
}

func deriveHour(r schema.Record) (any, bool) {
	t, ok := r[schema.ColStartedAt].(time.Time)
	if !ok {
		return nil, false
	}
	return t.Hour(), true
}

func deriveOwner(title cases.Caser, r schema.Record) (any, bool) {
	owner := strings.TrimSpace(strings.ReplaceAll(r.String(schema.ColFlowOwner), ServiceAccountMarker, ""))
	if owner == "" {
		return nil, false
	}
	return titleWords(title, owner), true
}

// titleWords title-cases each run of cased letters on its own, so anything
// that is not a letter starts a new word: "john.doe@corp.com" becomes
// "John.Doe@Corp.Com" and "o'brien" becomes "O'Brien".
func titleWords(title cases.Caser, s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	start := -1
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if isCased(r) {
			if start < 0 {
				start = i
			}
		} else {
			if start >= 0 {
				sb.WriteString(title.String(s[start:i]))
				start = -1
			}
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	if start >= 0 {
		sb.WriteString(title.String(s[start:]))
	}
	return sb.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

func deriveDisplayKey(r schema.Record) (any, bool) {
	key := schema.ComposeDisplayKey(r.String(schema.ColOwner), r.String(schema.ColProject), r.String(schema.ColFlowName))
	return key, true
}

func deriveTriggerGroup(r schema.Record) (any, bool) {
	switch r.String(schema.ColTriggerType) {
	case "manual":
		return string(schema.ManualTrigger), true
	case "Recurrence":
		return string(schema.RecurrenceTrigger), true
	default:
		return string(schema.OtherTrigger), true
	}
}

func loggerOr(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
