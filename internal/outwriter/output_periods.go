package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/internal/parquet"
	"github.com/huangsam/chatstats/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// periodCSVHeader is shared by the periods and report CSV outputs.
var periodCSVHeader = []string{
	"index",
	"start_date",
	"end_date",
	"total_messages",
	"total_words",
	"total_unique_words",
	"total_first_time_words",
	"total_profanity",
	"average_words_per_message",
	"average_sentiment",
	"average_profanity_per_message",
	"sentiment_label",
	"top_word",
}

// WritePeriodResults outputs the period buckets, dispatching based on the output format configured.
func WritePeriodResults(periods []schema.PeriodBucket, cfg *contract.Config, duration time.Duration) error {
	f := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForPeriods(w, periods)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForPeriods(w, periods, f)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WritePeriodSnapshotsParquet(parquet.ConvertPeriodBuckets(periods), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		contract.Logger().WithField("file", cfg.OutputFile).Info("Wrote Parquet")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writePeriodTable(w, periods, cfg, f); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Report completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
			return err
		}, "Wrote table")
	}
	return nil
}

// writePeriodTable generates and writes the human-readable period table.
func writePeriodTable(w io.Writer, periods []schema.PeriodBucket, cfg *contract.Config, f formatters) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Start", "End", "Msgs", "Words", "Unique", "New", "Profanity", "Avg Words", "Sentiment", "Label", "Top Word"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	wordWidth := getMaxTableWordWidth(cfg, 110)
	var data [][]string
	for _, p := range periods {
		row := p.Row()
		data = append(data, []string{
			strconv.Itoa(row.Index + 1),
			row.StartDate.Format(dateFormat),
			row.EndDate.Format(dateFormat),
			f.count(row.TotalMessages),
			f.count(row.TotalWords),
			f.count(row.TotalUniqueWords),
			f.count(row.TotalFirstTimeWords),
			f.count(row.TotalProfanity),
			f.metric(row.AverageWordsPerMessage, noDataText),
			f.metric(row.AverageSentiment, noDataText),
			sentimentLabel(row.AverageSentiment, cfg),
			contract.TruncateWord(row.TopWord, wordWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d periods of %s\n", len(periods), formatPeriodWidth(periods))
	return err
}

// formatPeriodWidth describes the bucket width in days.
func formatPeriodWidth(periods []schema.PeriodBucket) string {
	if len(periods) == 0 {
		return "0 days"
	}
	width := periods[0].EndDate.Sub(periods[0].StartDate)
	if width < contract.Day || width%contract.Day != 0 {
		return width.String()
	}
	return fmt.Sprintf("%d days", width/contract.Day)
}

// writeCSVResultsForPeriods writes one CSV row per bucket. Undefined
// averages are empty cells.
func writeCSVResultsForPeriods(w io.Writer, periods []schema.PeriodBucket, f formatters) error {
	return writeCSVWithHeader(w, periodCSVHeader, func(cw *csv.Writer) error {
		for _, p := range periods {
			row := p.Row()
			rec := []string{
				strconv.Itoa(row.Index),
				row.StartDate.Format(contract.DateTimeFormat),
				row.EndDate.Format(contract.DateTimeFormat),
				f.count(row.TotalMessages),
				f.count(row.TotalWords),
				f.count(row.TotalUniqueWords),
				f.count(row.TotalFirstTimeWords),
				f.count(row.TotalProfanity),
				f.metric(row.AverageWordsPerMessage, ""),
				f.metric(row.AverageSentiment, ""),
				f.metric(row.AverageProfanityPerMessage, ""),
				contract.GetPlainLabel(row.AverageSentiment),
				row.TopWord,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForPeriods writes the flattened buckets with their sentiment label.
func writeJSONResultsForPeriods(w io.Writer, periods []schema.PeriodBucket) error {
	type JSONPeriodRow struct {
		Label string `json:"label"`
		schema.PeriodRow
	}

	output := make([]JSONPeriodRow, len(periods))
	for i, p := range periods {
		output[i] = JSONPeriodRow{
			Label:     contract.GetPlainLabel(p.AverageSentiment),
			PeriodRow: p.Row(),
		}
	}
	return writeJSON(w, output)
}
