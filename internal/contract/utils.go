package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/runmatrix/schema"
)

// Color variables for console output.
var (
	FailedColor  = color.New(color.FgRed, color.Bold) // FailedColor represents a failed or errored run.
	RunningColor = color.New(color.FgYellow)          // RunningColor represents work in flight.
	SuccessColor = color.New(color.FgGreen)           // SuccessColor represents a finished run.
	PausedColor  = color.New(color.FgMagenta)         // PausedColor represents a halted run.
	IdleColor    = color.New(color.FgHiBlack)         // IdleColor represents an empty hour.
)

// statusGlyphs maps each cell status to the glyph shown in table output.
var statusGlyphs = map[string]string{
	schema.StatusSucceeded: "✅",
	schema.StatusFailed:    "❌",
	schema.StatusRunning:   "🔄",
	schema.StatusNoRun:     "⬜",
	schema.StatusCompleted: "✅",
	schema.StatusCanceled:  "⏹️",
	schema.StatusSuspended: "⏸️",
	schema.StatusSkipped:   "⏭️",
	schema.StatusError:     "❌",
	schema.StatusTimedOut:  "⏰",
}

// shortLabels are the compact cell labels used when glyphs are disabled.
var shortLabels = map[string]string{
	schema.StatusSucceeded: "OK",
	schema.StatusFailed:    "FAIL",
	schema.StatusRunning:   "RUN",
	schema.StatusNoRun:     "-",
	schema.StatusCompleted: "DONE",
	schema.StatusCanceled:  "CXL",
	schema.StatusSuspended: "SUSP",
	schema.StatusSkipped:   "SKIP",
	schema.StatusError:     "ERR",
	schema.StatusTimedOut:  "TIME",
}

// GetStatusGlyph returns the glyph for a status. Unknown statuses render as No Run.
func GetStatusGlyph(status string) string {
	return statusGlyphs[schema.CanonicalStatus(status)]
}

// GetPlainLabel returns the compact text label for a status. This is the core
// logic used for table printing without glyphs.
func GetPlainLabel(status string) string {
	return shortLabels[schema.CanonicalStatus(status)]
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(status string) string {
	canonical := schema.CanonicalStatus(status)
	text := shortLabels[canonical]

	switch canonical {
	case schema.StatusFailed, schema.StatusError, schema.StatusTimedOut:
		return FailedColor.Sprint(text)
	case schema.StatusRunning:
		return RunningColor.Sprint(text)
	case schema.StatusSucceeded, schema.StatusCompleted:
		return SuccessColor.Sprint(text)
	case schema.StatusCanceled, schema.StatusSuspended, schema.StatusSkipped:
		return PausedColor.Sprint(text)
	default: // No Run
		return IdleColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetDBFilePath returns the path to the default SQLite run-history database.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".runmatrix.db"
	}
	return filepath.Join(homeDir, ".runmatrix.db")
}

// TruncateLabel truncates a label to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the "..." and at least one character.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return label
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
