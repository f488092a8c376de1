package algo

import (
	"slices"

	"github.com/huangsam/runmatrix/schema"
)

// Interestingness weights. A failing entity outranks any number of running
// ones within a realistic day of runs.
const (
	FailedWeight  = 100
	RunningWeight = 10
)

// EntityActivity tallies the runs of one entity.
type EntityActivity struct {
	Key     string
	Failed  int
	Running int
	Total   int
	order   int
}

// Score returns the interestingness score used to cap the entity list.
func (a EntityActivity) Score() int {
	return FailedWeight*a.Failed + RunningWeight*a.Running + a.Total
}

// ActivityTally accumulates EntityActivity in first-seen order.
type ActivityTally struct {
	index map[string]int
	items []EntityActivity
}

// NewActivityTally creates an empty tally.
func NewActivityTally() *ActivityTally {
	return &ActivityTally{index: make(map[string]int)}
}

// Observe records one run of an entity. Status classes match the canonical
// vocabulary, so "InProgress" counts as running and "failed" as failed.
func (t *ActivityTally) Observe(key, status string) {
	i, ok := t.index[key]
	if !ok {
		i = len(t.items)
		t.index[key] = i
		t.items = append(t.items, EntityActivity{Key: key, order: i})
	}
	a := &t.items[i]
	a.Total++
	switch schema.CanonicalStatus(status) {
	case schema.StatusFailed:
		a.Failed++
	case schema.StatusRunning:
		a.Running++
	}
}

// Keys returns entity keys in first-seen order.
func (t *ActivityTally) Keys() []string {
	keys := make([]string, len(t.items))
	for i, a := range t.items {
		keys[i] = a.Key
	}
	return keys
}

// Len returns the number of distinct entities.
func (t *ActivityTally) Len() int {
	return len(t.items)
}

// RankEntities sorts activity by score in descending order and returns the
// top 'limit' entries. Equal scores keep first-seen order. If limit is not
// positive or exceeds the number of entries, all entries are returned.
func RankEntities(items []EntityActivity, limit int) []EntityActivity {
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, func(a, b EntityActivity) int {
		if a.Score() != b.Score() {
			return b.Score() - a.Score()
		}
		return a.order - b.order
	})
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// Top returns the keys of the 'limit' most interesting entities, most
// interesting first.
func (t *ActivityTally) Top(limit int) []string {
	ranked := RankEntities(t.items, limit)
	keys := make([]string, len(ranked))
	for i, a := range ranked {
		keys[i] = a.Key
	}
	return keys
}

// ReduceStatuses picks the representative status of a bucket: the highest
// priority wins, and equal priorities resolve to the lexicographically
// smallest label. An empty bucket is "No Run".
func ReduceStatuses(statuses []string) string {
	best, bestPriority := schema.StatusNoRun, -1
	for _, s := range statuses {
		p := schema.StatusPriority(s)
		if p > bestPriority || (p == bestPriority && s < best) {
			best, bestPriority = s, p
		}
	}
	return best
}
