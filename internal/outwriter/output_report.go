package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/internal/parquet"
	"github.com/huangsam/chatstats/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteReportResults outputs the full report, dispatching based on the output format configured.
// CSV carries the period rows only since the frequency tables do not flatten into them.
func WriteReportResults(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	f := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForPeriods(w, report.DataPeriods, f)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeReportParquet(report, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(w, report, cfg, f, duration)
		}, "Wrote table")
	}
	return nil
}

// writeReportParquet writes two files next to each other: the period
// snapshots and the ranked words of both frequency tables.
func writeReportParquet(report *schema.Report, outputFile string) error {
	periodsFile := outputFile + ".periods.parquet"
	if err := parquet.WritePeriodSnapshotsParquet(parquet.ConvertPeriodBuckets(report.DataPeriods), periodsFile); err != nil {
		return err
	}
	contract.Logger().WithField("file", periodsFile).Info("Wrote Parquet")

	words := parquet.ConvertWordEntries(report.WordFrequency.Entries(), schema.WordKind)
	words = append(words, parquet.ConvertWordEntries(report.ProfanityFrequency.Entries(), schema.ProfanityKind)...)
	wordsFile := outputFile + ".words.parquet"
	if err := parquet.WriteWordsParquet(words, wordsFile); err != nil {
		return err
	}
	contract.Logger().WithField("file", wordsFile).Info("Wrote Parquet")
	return nil
}

// writeReportText prints the summary, the period table and the top words.
func writeReportText(w io.Writer, report *schema.Report, cfg *contract.Config, f formatters, duration time.Duration) error {
	if err := writeSummaryTable(w, report.Summary(), cfg, f); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := writePeriodTable(w, report.DataPeriods, cfg, f); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	top := report.WordFrequency.Top(cfg.ResultLimit)
	if err := writeWordTable(w, top, cfg, f); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing top %d of %d words\n", len(top), report.WordFrequency.Len()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Report completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
	return err
}

func writeSummaryTable(w io.Writer, s schema.ReportSummary, cfg *contract.Config, f formatters) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		{"Messages", f.count(s.TotalMessages)},
		{"Words", f.count(s.TotalWords)},
		{"Unique Words", f.count(s.TotalUniqueWords)},
		{"Avg Words / Message", f.metric(s.AverageWordsPerMessage, noDataText)},
		{"Profanity", f.count(s.TotalProfanity)},
		{"Avg Profanity / Message", f.metric(s.AverageProfanityPerMessage, noDataText)},
		{"Avg Sentiment", f.metric(s.AverageSentiment, noDataText)},
		{"Sentiment Label", sentimentLabel(s.AverageSentiment, cfg)},
		{"Periods", f.count(s.TotalPeriods)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
