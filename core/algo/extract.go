// Package algo has the project extraction, status reduction and ranking logic for runmatrix.
package algo

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/huangsam/runmatrix/schema"
)

// DefaultExtractorCacheSize bounds the number of memoized flow names.
const DefaultExtractorCacheSize = 1000

// KnownIdentifiers are short organizational prefixes recognized anywhere in a
// flow name. They are checked in this order.
var KnownIdentifiers = []string{"AMZ", "AWS", "C2D", "AZ", "WF", "PS", "VP", "BI"}

var (
	leadingWordRe = regexp.MustCompile(`^[A-Z][a-z]+`)
	alphaRunRe    = regexp.MustCompile(`[A-Za-z]{3,}`)
	segmentRe     = regexp.MustCompile(`[_\s-]`)
)

// ProjectExtractor memoizes ExtractProject behind a bounded LRU cache.
// It is safe for concurrent use and meant to be built once and shared.
type ProjectExtractor struct {
	cache *lru.Cache[string, string]
}

// NewProjectExtractor creates an extractor holding at most size names.
// A non-positive size uses DefaultExtractorCacheSize.
func NewProjectExtractor(size int) *ProjectExtractor {
	if size <= 0 {
		size = DefaultExtractorCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return &ProjectExtractor{}
	}
	return &ProjectExtractor{cache: cache}
}

// Extract returns the project label for a flow name.
func (e *ProjectExtractor) Extract(name string) string {
	if e == nil || e.cache == nil {
		return ExtractProject(name)
	}
	if project, ok := e.cache.Get(name); ok {
		return project
	}
	project := ExtractProject(name)
	e.cache.Add(name, project)
	return project
}

// ExtractValue is Extract for untyped record values. Anything that is not
// text yields "Unknown".
func (e *ProjectExtractor) ExtractValue(v any) string {
	name, ok := schema.AsString(v)
	if !ok {
		return schema.Unknown
	}
	return e.Extract(name)
}

// Len returns the number of cached names.
func (e *ProjectExtractor) Len() int {
	if e == nil || e.cache == nil {
		return 0
	}
	return e.cache.Len()
}

// ExtractProject derives a short grouping label from a free-text flow name.
// The first matching heuristic wins:
//
//  1. text before " - "
//  2. text before "_"
//  3. a leading capitalized word ("Finance" in "FinanceReport")
//  4. the first token when longer than two runes and capitalized
//  5. the segment holding a known identifier such as "AWS"
//  6. the first run of three or more letters
//
// Blank names and names matching nothing yield "Unknown".
func ExtractProject(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.Unknown
	}

	if before, _, ok := strings.Cut(name, " - "); ok {
		return orUnknown(strings.TrimSpace(before))
	}
	if before, _, ok := strings.Cut(name, "_"); ok {
		return orUnknown(strings.TrimSpace(before))
	}

	if word := leadingWordRe.FindString(name); word != "" {
		return word
	}

	if words := strings.Fields(name); len(words) > 0 {
		first := words[0]
		r, _ := utf8.DecodeRuneInString(first)
		if utf8.RuneCountInString(first) > 2 && unicode.IsUpper(r) {
			return first
		}
	}

	upper := strings.ToUpper(name)
	for _, id := range KnownIdentifiers {
		if !strings.Contains(upper, id) {
			continue
		}
		for _, part := range segmentRe.Split(name, -1) {
			if strings.Contains(strings.ToUpper(part), id) {
				return part
			}
		}
	}

	if run := alphaRunRe.FindString(name); run != "" {
		return run
	}
	return schema.Unknown
}

func orUnknown(s string) string {
	if s == "" {
		return schema.Unknown
	}
	return s
}
