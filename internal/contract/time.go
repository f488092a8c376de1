package contract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const oneDay = 24 * time.Hour

// lookbackUnits maps unit words and their short forms to a length.
// Months and years are calendar approximations.
var lookbackUnits = map[string]time.Duration{
	"minute": time.Minute, "min": time.Minute,
	"hour": time.Hour, "hr": time.Hour,
	"day": oneDay, "d": oneDay,
	"week": 7 * oneDay, "wk": 7 * oneDay, "w": 7 * oneDay,
	"month": 30 * oneDay, "mo": 30 * oneDay,
	"year": 365 * oneDay, "yr": 365 * oneDay, "y": 365 * oneDay,
}

var lookbackRe = regexp.MustCompile(`^(\d+)\s*([a-z]+)$`)

// ParseLookbackDuration turns a run-history window such as "1 month", "2w" or "36h"
// into a positive duration. Go duration syntax is tried first.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, errors.New("lookback must be positive")
		}
		return d, nil
	}

	m := lookbackRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid lookback %q: want a count and a unit such as \"7 days\"", s)
	}
	unit, ok := lookbackUnits[m[2]]
	if !ok {
		unit, ok = lookbackUnits[strings.TrimSuffix(m[2], "s")]
	}
	if !ok {
		return 0, fmt.Errorf("invalid lookback %q: unknown unit %q", s, m[2])
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("invalid lookback %q: count out of range", s)
	}
	if n == 0 {
		return 0, errors.New("lookback must be positive")
	}
	return time.Duration(n) * unit, nil
}
