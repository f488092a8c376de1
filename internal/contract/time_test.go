package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLookbackDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"default", DefaultLookback, 30 * oneDay, false},
		{"minutes", "45 minutes", 45 * time.Minute, false},
		{"single hour", "1 hour", time.Hour, false},
		{"days", "7 days", 7 * oneDay, false},
		{"weeks", "4 weeks", 28 * oneDay, false},
		{"year", "1 year", 365 * oneDay, false},
		{"compact days", "30d", 30 * oneDay, false},
		{"compact weeks", "2w", 14 * oneDay, false},
		{"short plural", "3 hrs", 3 * time.Hour, false},
		{"short month", "6mo", 180 * oneDay, false},
		{"go duration", "36h", 36 * time.Hour, false},
		{"go mixed", "1h30m", 90 * time.Minute, false},
		{"case and spacing", "  3 MoNtHs ", 90 * oneDay, false},

		{"negative go duration", "-5h", 0, true},
		{"zero count", "0 days", 0, true},
		{"no count", "months", 0, true},
		{"no unit", "3", 0, true},
		{"unknown unit", "3 decades", 0, true},
		{"fraction", "1.5 days", 0, true},
		{"overflow", "99999999999 years", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLookbackDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func FuzzParseLookbackDuration(f *testing.F) {
	for _, seed := range []string{"1 month", "2w", "720h", "0 days", "", "abc", "999999 years"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		if d, err := ParseLookbackDuration(input); err == nil && d <= 0 {
			t.Errorf("ParseLookbackDuration(%q) = %v without error", input, d)
		}
	})
}
