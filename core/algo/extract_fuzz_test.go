package algo

import (
	"slices"
	"strings"
	"testing"

	"github.com/huangsam/runmatrix/schema"
)

// FuzzExtractProject checks that every flow name maps to a non-empty label
// and that the cached extractor agrees with the direct call.
func FuzzExtractProject(f *testing.F) {
	seeds := []string{
		"WF - Nightly Sync",
		"C2D_DataSync",
		"FinanceReport",
		"daily aws backup",
		"  ",
		"__",
		" - ",
		"42",
		"Überweisung Export",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	e := NewProjectExtractor(8)
	f.Fuzz(func(t *testing.T, name string) {
		got := ExtractProject(name)
		if got == "" {
			t.Fatalf("ExtractProject(%q) returned an empty label", name)
		}
		if cached := e.Extract(name); cached != got {
			t.Fatalf("cached label %q differs from %q for %q", cached, got, name)
		}
		if strings.TrimSpace(name) == "" && got != schema.Unknown {
			t.Fatalf("blank name %q yielded %q", name, got)
		}
	})
}

// FuzzReduceStatuses checks that the reduced status is one of the inputs and
// does not depend on their order.
func FuzzReduceStatuses(f *testing.F) {
	f.Add("Succeeded,Failed,Running")
	f.Add("Canceled,Cancelled,Unknown")
	f.Add("")
	f.Add("b,a,a")

	f.Fuzz(func(t *testing.T, joined string) {
		var statuses []string
		if joined != "" {
			statuses = strings.Split(joined, ",")
		}
		got := ReduceStatuses(statuses)
		if len(statuses) == 0 {
			if got != schema.StatusNoRun {
				t.Fatalf("empty bucket reduced to %q", got)
			}
			return
		}
		if !slices.Contains(statuses, got) {
			t.Fatalf("ReduceStatuses(%q) = %q, not an input", statuses, got)
		}
		reversed := slices.Clone(statuses)
		slices.Reverse(reversed)
		if again := ReduceStatuses(reversed); again != got {
			t.Fatalf("order changed the result: %q vs %q", got, again)
		}
	})
}
