package schema

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order when a timestamp arrives as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// AsString returns v as text. Only string-like values qualify.
func AsString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	default:
		return "", false
	}
}

// AsTime coerces v into a timestamp. Text is parsed against a fixed set of
// layouts; zero times and other types are rejected.
func AsTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case []byte:
		return ParseTimestamp(string(x))
	case string:
		return ParseTimestamp(x)
	default:
		return time.Time{}, false
	}
}

// ParseTimestamp parses text against the supported layouts. The zero time is
// rejected like unparseable text.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, !t.IsZero()
		}
	}
	return time.Time{}, false
}

// AsInt coerces v into an integer. Floats must be integral and text must be
// a base-10 integer.
func AsInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int8:
		return int(x), true
	case int16:
		return int(x), true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return int(x), true
	case uint64:
		if x > math.MaxInt32 {
			return 0, false
		}
		return int(x), true
	case float32:
		return AsInt(float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		return n, err == nil
	case []byte:
		return AsInt(string(x))
	default:
		return 0, false
	}
}

// AsFloat coerces v into a float.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f)
	case []byte:
		return AsFloat(string(x))
	default:
		if n, ok := AsInt(v); ok {
			return float64(n), true
		}
		return 0, false
	}
}

// AsFlag coerces v into a 0/1 success flag.
func AsFlag(v any) (int, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes":
			return 1, true
		case "0", "false", "no":
			return 0, true
		}
		return 0, false
	case []byte:
		return AsFlag(string(x))
	default:
		n, ok := AsInt(v)
		if !ok || (n != 0 && n != 1) {
			return 0, false
		}
		return n, true
	}
}

// ValidHour reports whether h is an hour of the day.
func ValidHour(h int) bool {
	return h >= 0 && h < HoursPerDay
}

// DayHours returns the fixed hour axis 0..23.
func DayHours() []int {
	hours := make([]int, HoursPerDay)
	for i := range hours {
		hours[i] = i
	}
	return hours
}
