package schema

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2024-05-01T02:05:00Z", time.Date(2024, 5, 1, 2, 5, 0, 0, time.UTC), true},
		{"2024-05-01T02:05:00.123456789Z", time.Date(2024, 5, 1, 2, 5, 0, 123456789, time.UTC), true},
		{"2024-05-01 02:05:00", time.Date(2024, 5, 1, 2, 5, 0, 0, time.UTC), true},
		{"2024-05-01 02:05:00.500000", time.Date(2024, 5, 1, 2, 5, 0, 500000000, time.UTC), true},
		{"2024-05-01 02:05", time.Date(2024, 5, 1, 2, 5, 0, 0, time.UTC), true},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"05/01/2024 14:30", time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC), true},
		{"  2024-05-01  ", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"2024-13-45", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestAsTime(t *testing.T) {
	ts := time.Date(2024, 5, 1, 2, 5, 0, 0, time.UTC)

	got, ok := AsTime(ts)
	assert.True(t, ok)
	assert.Equal(t, ts, got)

	got, ok = AsTime(&ts)
	assert.True(t, ok)
	assert.Equal(t, ts, got)

	got, ok = AsTime([]byte("2024-05-01 02:05:00"))
	assert.True(t, ok)
	assert.True(t, ts.Equal(got))

	for _, v := range []any{time.Time{}, (*time.Time)(nil), nil, 42, "nope"} {
		_, ok := AsTime(v)
		assert.False(t, ok, "%#v", v)
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"int", 7, 7, true},
		{"int64", int64(23), 23, true},
		{"uint8", uint8(3), 3, true},
		{"integral float", 4.0, 4, true},
		{"fractional float", 4.5, 0, false},
		{"NaN", math.NaN(), 0, false},
		{"text", " 12 ", 12, true},
		{"bytes", []byte("5"), 5, true},
		{"bad text", "twelve", 0, false},
		{"huge uint64", uint64(math.MaxUint64), 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsInt(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsFloat(t *testing.T) {
	f, ok := AsFloat("50.5")
	assert.True(t, ok)
	assert.InDelta(t, 50.5, f, 1e-9)

	f, ok = AsFloat(3)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, f, 1e-9)

	_, ok = AsFloat(math.NaN())
	assert.False(t, ok)
	_, ok = AsFloat("NaN")
	assert.False(t, ok)
	_, ok = AsFloat(true)
	assert.False(t, ok)
}

func TestAsFlag(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"true", true, 1, true},
		{"false", false, 0, true},
		{"one", 1, 1, true},
		{"zero float", 0.0, 0, true},
		{"two", 2, 0, false},
		{"yes", "Yes", 1, true},
		{"no", " no ", 0, true},
		{"bytes", []byte("1"), 1, true},
		{"garbage", "maybe", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsFlag(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHours(t *testing.T) {
	assert.True(t, ValidHour(0))
	assert.True(t, ValidHour(23))
	assert.False(t, ValidHour(24))
	assert.False(t, ValidHour(-1))

	hours := DayHours()
	assert.Len(t, hours, HoursPerDay)
	assert.Equal(t, 0, hours[0])
	assert.Equal(t, 23, hours[23])
}

// FuzzParseTimestamp checks that parsing never panics and never yields a zero time.
func FuzzParseTimestamp(f *testing.F) {
	for _, s := range []string{"2024-05-01 02:05:00", "2024-05-01T02:05:00Z", "05/01/2024", "", "0000-00-00"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		if ts, ok := ParseTimestamp(s); ok && ts.IsZero() {
			t.Fatalf("ParseTimestamp(%q) accepted a zero time", s)
		}
	})
}
