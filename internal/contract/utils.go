package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/chatstats/schema"
)

// Sentiment label constants.
const (
	VeryPositiveValue = "Very Positive"
	PositiveValue     = "Positive"
	NeutralValue      = "Neutral"
	NegativeValue     = "Negative"
	VeryNegativeValue = "Very Negative"
	NoDataValue       = "No Data"
)

// Color variables for console output.
var (
	VeryPositiveColor = color.New(color.FgGreen, color.Bold)
	PositiveColor     = color.New(color.FgGreen)
	NeutralColor      = color.New(color.FgCyan)
	NegativeColor     = color.New(color.FgYellow)
	VeryNegativeColor = color.New(color.FgRed, color.Bold)
	NoDataColor       = color.New(color.Faint)
)

// GetPlainLabel returns a plain text label describing an average sentiment.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(score schema.Metric) string {
	if score.IsNoData() {
		return NoDataValue
	}
	switch s := score.Float(); {
	case s >= 1:
		return VeryPositiveValue
	case s >= 0.2:
		return PositiveValue
	case s > -0.2:
		return NeutralValue
	case s > -1:
		return NegativeValue
	default:
		return VeryNegativeValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(score schema.Metric) string {
	text := GetPlainLabel(score)

	switch text {
	case VeryPositiveValue:
		return VeryPositiveColor.Sprint(text)
	case PositiveValue:
		return PositiveColor.Sprint(text)
	case NeutralValue:
		return NeutralColor.Sprint(text)
	case NegativeValue:
		return NegativeColor.Sprint(text)
	case VeryNegativeValue:
		return VeryNegativeColor.Sprint(text)
	default:
		return NoDataColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output.
// An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for report caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".chatstats_cache.db"
	}
	return filepath.Join(homeDir, ".chatstats_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".chatstats_history.db"
	}
	return filepath.Join(homeDir, ".chatstats_history.db")
}

// TruncateWord shortens a word to maxWidth runes with an ellipsis suffix.
func TruncateWord(word string, maxWidth int) string {
	runes := []rune(word)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return word
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
