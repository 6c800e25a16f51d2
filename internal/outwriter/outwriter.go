// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints the full report using the configured output format.
func (ow *OutWriter) WriteReport(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	return WriteReportResults(report, cfg, duration)
}

// WritePeriods prints the period buckets using the configured output format.
func (ow *OutWriter) WritePeriods(periods []schema.PeriodBucket, cfg *contract.Config, duration time.Duration) error {
	return WritePeriodResults(periods, cfg, duration)
}

// WriteWords prints a ranked word listing using the configured output format.
func (ow *OutWriter) WriteWords(entries []schema.WordEntry, cfg *contract.Config, duration time.Duration) error {
	return WriteWordResults(entries, cfg, duration)
}

// terminalWidth returns the width override or the detected stdout width.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getMaxTableWordWidth calculates the maximum width for word cells in table
// output. reserved is the width taken by the other columns.
func getMaxTableWordWidth(cfg *contract.Config, reserved int) int {
	// Reserve generous space for table borders, separators, and padding
	available := terminalWidth(cfg) - reserved - 20
	if available < 10 {
		return 10
	}
	if available > 40 {
		return 40
	}
	return available
}
