package schema

import "strings"

// ComposeDisplayKey builds the entity identity "owner | project | flow".
// Blank parts become "Unknown".
func ComposeDisplayKey(owner, project, flowName string) string {
	parts := []string{owner, project, flowName}
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			parts[i] = Unknown
		}
	}
	return strings.Join(parts, " | ")
}

// UsableDisplayKey reports whether key may identify an entity.
func UsableDisplayKey(key string) bool {
	return strings.TrimSpace(key) != "" && key != DegenerateDisplayKey
}

// SuccessFlag returns the 0/1 outcome of a record, preferring an explicit
// was-successful value and otherwise deriving it from the status.
func SuccessFlag(r Record) int {
	if n, ok := AsFlag(r[ColWasSuccessful]); ok {
		return n
	}
	if IsSuccessStatus(r.String(ColTaskStatus)) {
		return 1
	}
	return 0
}

// HourOf returns the hour column of a record when it holds a valid hour.
func HourOf(r Record) (int, bool) {
	h, ok := AsInt(r[ColHour])
	if !ok || !ValidHour(h) {
		return 0, false
	}
	return h, true
}

// FillSuccessRate sets success_rate on every row to the percentage of
// successful runs sharing its flow name.
func (b *Batch) FillSuccessRate() {
	type tally struct{ ok, total int }
	byFlow := make(map[string]*tally)
	for _, r := range b.Rows {
		name := r.String(ColFlowName)
		t, found := byFlow[name]
		if !found {
			t = &tally{}
			byFlow[name] = t
		}
		t.ok += SuccessFlag(r)
		t.total++
	}
	b.Fill(ColSuccessRate, func(r Record) any {
		t := byFlow[r.String(ColFlowName)]
		return 100 * float64(t.ok) / float64(t.total)
	})
}
