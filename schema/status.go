package schema

import "strings"

// Canonical run statuses. The first ten form the closed vocabulary that the
// matrix emits; the rest are aliases understood by the priority table.
const (
	StatusSucceeded = "Succeeded"
	StatusFailed    = "Failed"
	StatusRunning   = "Running"
	StatusNoRun     = "No Run"
	StatusCompleted = "Completed"
	StatusCanceled  = "Canceled"
	StatusSuspended = "Suspended"
	StatusSkipped   = "Skipped"
	StatusError     = "Error"
	StatusTimedOut  = "TimedOut"

	StatusInProgress = "InProgress"
	StatusStarted    = "Started"
	StatusDone       = "Done"
	StatusPaused     = "Paused"
)

// StatusVocabulary is the closed set of statuses a matrix cell may hold.
var StatusVocabulary = []string{
	StatusSucceeded, StatusFailed, StatusRunning, StatusNoRun, StatusCompleted,
	StatusCanceled, StatusSuspended, StatusSkipped, StatusError, StatusTimedOut,
}

// statusPriority ranks statuses when several runs share one hour bucket.
var statusPriority = map[string]int{
	StatusFailed:     100,
	StatusError:      100,
	StatusTimedOut:   100,
	StatusRunning:    80,
	StatusInProgress: 80,
	StatusStarted:    80,
	StatusSucceeded:  60,
	StatusCompleted:  60,
	StatusDone:       60,
	StatusSkipped:    40,
	StatusCanceled:   30,
	StatusSuspended:  20,
	StatusPaused:     20,
	StatusNoRun:      0,
}

// statusAliases folds the priority-table aliases onto vocabulary members.
var statusAliases = map[string]string{
	StatusInProgress: StatusRunning,
	StatusStarted:    StatusRunning,
	StatusDone:       StatusCompleted,
	StatusPaused:     StatusSuspended,
}

// statusByFold indexes every known spelling by its lower-case form.
var statusByFold = func() map[string]string {
	m := make(map[string]string, len(statusPriority))
	for s := range statusPriority {
		m[strings.ToLower(s)] = s
	}
	return m
}()

// lookupStatus resolves a raw label to its known spelling, ignoring case.
func lookupStatus(status string) (string, bool) {
	if _, ok := statusPriority[status]; ok {
		return status, true
	}
	s, ok := statusByFold[strings.ToLower(strings.TrimSpace(status))]
	return s, ok
}

// StatusPriority returns the priority of a status label. Unknown labels rank
// with "No Run" at zero.
func StatusPriority(status string) int {
	if s, ok := lookupStatus(status); ok {
		return statusPriority[s]
	}
	return 0
}

// CanonicalStatus maps a raw label onto the closed vocabulary. Aliases fold to
// their vocabulary member and unrecognized labels become "No Run".
func CanonicalStatus(status string) string {
	s, ok := lookupStatus(status)
	if !ok {
		return StatusNoRun
	}
	if alias, ok := statusAliases[s]; ok {
		return alias
	}
	return s
}

// IsKnownStatus reports whether the label belongs to the vocabulary or the
// priority-table aliases, ignoring case.
func IsKnownStatus(status string) bool {
	_, ok := lookupStatus(status)
	return ok
}

// IsSuccessStatus reports whether a raw status counts as a successful run.
func IsSuccessStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "succeeded", "completed":
		return true
	default:
		return false
	}
}
