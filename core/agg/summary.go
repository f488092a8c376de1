package agg

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/runmatrix/schema"
)

// TopProjectsLimit is the number of projects listed in a summary.
const TopProjectsLimit = 10

// BuildSelectors lists the distinct projects and statuses of a normalized
// batch, sorted ascending, each behind its "All" sentinel.
func BuildSelectors(b *schema.Batch) schema.Selectors {
	return schema.Selectors{
		Projects: append([]string{schema.AllProjects}, distinct(b, schema.ColProject)...),
		Statuses: append([]string{schema.AllStatuses}, distinct(b, schema.ColTaskStatus)...),
	}
}

func distinct(b *schema.Batch, col schema.Column) []string {
	if !b.Has(col) {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range b.Rows {
		v := r.String(col)
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

// Summarize computes headline statistics over a normalized batch: status
// distribution, busiest projects, overall success rate and the time span.
func Summarize(b *schema.Batch) schema.Summary {
	s := schema.Summary{TotalRuns: b.Len()}
	if b.Empty() {
		return s
	}

	statuses := map[string]int{}
	projects := map[string]int{}
	entities := map[string]struct{}{}
	successes := 0
	for _, r := range b.Rows {
		statuses[orUnknown(r.String(schema.ColTaskStatus))]++
		projects[orUnknown(r.String(schema.ColProject))]++
		entities[r.String(schema.ColDisplayKey)] = struct{}{}
		successes += schema.SuccessFlag(r)
		if t, ok := r[schema.ColStartedAt].(time.Time); ok {
			if s.FirstRun.IsZero() || t.Before(s.FirstRun) {
				s.FirstRun = t
			}
			if t.After(s.LastRun) {
				s.LastRun = t
			}
		}
	}

	s.Entities = len(entities)
	s.Projects = len(projects)
	s.SuccessRate = 100 * float64(successes) / float64(b.Len())
	s.StatusDistribution = rankCounts(statuses, 0)
	s.TopProjects = rankCounts(projects, TopProjectsLimit)
	return s
}

// rankCounts sorts counts descending, then by name, and keeps 'limit' entries.
// A non-positive limit keeps everything.
func rankCounts(counts map[string]int, limit int) []schema.CountEntry {
	out := make([]schema.CountEntry, 0, len(counts))
	for name, n := range counts {
		out = append(out, schema.CountEntry{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b schema.CountEntry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(out) > limit {
		return out[:limit]
	}
	return out
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return schema.Unknown
	}
	return s
}
