package agg

import (
	"testing"
	"time"

	"github.com/huangsam/runmatrix/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelectors(t *testing.T) {
	b := normalized(t,
		run{"WF - A", "ops", "2024-05-01 01:00:00", "Succeeded"},
		run{"C2D_Sync", "ops", "2024-05-01 02:00:00", "Failed"},
		run{"AMZ - Orders", "ops", "2024-05-01 03:00:00", "Failed"},
	)
	sel := BuildSelectors(b)
	assert.Equal(t, []string{schema.AllProjects, "AMZ", "C2D", "WF"}, sel.Projects)
	assert.Equal(t, []string{schema.AllStatuses, "Failed", "Succeeded"}, sel.Statuses)
}

func TestBuildSelectorsEmpty(t *testing.T) {
	sel := BuildSelectors(nil)
	assert.Equal(t, []string{schema.AllProjects}, sel.Projects)
	assert.Equal(t, []string{schema.AllStatuses}, sel.Statuses)
}

func TestSummarize(t *testing.T) {
	b := normalized(t,
		run{"WF - A", "ops", "2024-05-01 01:00:00", "Succeeded"},
		run{"WF - A", "ops", "2024-05-01 02:00:00", "Failed"},
		run{"WF - B", "ops", "2024-05-01 03:00:00", "Failed"},
		run{"C2D_Sync", "ops", "2024-05-01 23:00:00", "Completed"},
	)
	s := Summarize(b)
	assert.Equal(t, 4, s.TotalRuns)
	assert.Equal(t, 3, s.Entities)
	assert.Equal(t, 2, s.Projects)
	assert.InDelta(t, 50.0, s.SuccessRate, 0.001)
	assert.Equal(t, []schema.CountEntry{{Name: "Failed", Count: 2}, {Name: "Completed", Count: 1}, {Name: "Succeeded", Count: 1}}, s.StatusDistribution)
	require.Len(t, s.TopProjects, 2)
	assert.Equal(t, schema.CountEntry{Name: "WF", Count: 3}, s.TopProjects[0])
	assert.Equal(t, time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC), s.FirstRun)
	assert.Equal(t, time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC), s.LastRun)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(schema.NewBatch())
	assert.Zero(t, s.TotalRuns)
	assert.Empty(t, s.TopProjects)
}

func TestRankCountsLimit(t *testing.T) {
	counts := map[string]int{}
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		counts[name] = i
	}
	top := rankCounts(counts, TopProjectsLimit)
	require.Len(t, top, TopProjectsLimit)
	assert.Equal(t, "l", top[0].Name)
}
