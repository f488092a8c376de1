package outwriter

import (
	"os"

	"github.com/huangsam/runmatrix/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableEntityWidth calculates the maximum width for entity labels in
// matrix tables based on terminal width and the 24 hour columns.
func GetMaxTableEntityWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Each hour column holds a glyph or a short label plus borders
	hourWidth := 7
	if cfg.UseEmojis {
		hourWidth = 5
	}
	baseWidth := hourWidth*24 + 4

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 60 {
		return 60
	}
	return available
}
