package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/schema"
)

// noDataText is how undefined averages appear in tables.
const noDataText = "no data"

// dateFormat is the day-level layout used for bucket bounds in tables and CSV.
const dateFormat = "2006-01-02"

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		contract.Logger().WithField("file", outputFile).Info(successMsg)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// formatters bundles the number formatting shared by all output types.
type formatters struct {
	float  func(float64) string
	intFmt string
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) formatters {
	return formatters{
		float: func(v float64) string {
			return fmt.Sprintf("%.*f", precision, v)
		},
		intFmt: "%d",
	}
}

// metric formats an average, or noData when it is undefined.
func (f formatters) metric(m schema.Metric, noData string) string {
	if m.IsNoData() {
		return noData
	}
	return f.float(m.Float())
}

// count formats an integer.
func (f formatters) count(v int) string {
	return fmt.Sprintf(f.intFmt, v)
}

// sentimentLabel returns the colored or plain label for a score.
func sentimentLabel(score schema.Metric, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return contract.GetPlainLabel(score)
}
