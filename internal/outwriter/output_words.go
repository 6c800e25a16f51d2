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

// WriteWordResults outputs a ranked word listing, dispatching based on the output format configured.
func WriteWordResults(entries []schema.WordEntry, cfg *contract.Config, duration time.Duration) error {
	f := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForWords(w, entries)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForWords(w, entries, f)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteWordsParquet(parquet.ConvertWordEntries(entries, cfg.Kind), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		contract.Logger().WithField("file", cfg.OutputFile).Info("Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeWordTable(w, entries, cfg, f); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Showing top %d %s\n", len(entries), kindName(cfg.Kind)); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Report completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
			return err
		}, "Wrote table")
	}
	return nil
}

func kindName(kind schema.FrequencyKind) string {
	if kind == "" {
		return string(schema.WordKind)
	}
	return string(kind)
}

// writeWordTable generates and writes the human-readable word table.
func writeWordTable(w io.Writer, entries []schema.WordEntry, cfg *contract.Config, f formatters) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Word", "Count", "Sentiment", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := getMaxTableWordWidth(cfg, 45)
	var data [][]string
	for i, e := range entries {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateWord(e.Word, maxWidth),
			f.count(e.Count),
			f.float(e.Sentiment),
			sentimentLabel(schema.Metric(e.Sentiment), cfg),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCSVResultsForWords writes one ranked row per entry.
func writeCSVResultsForWords(w io.Writer, entries []schema.WordEntry, f formatters) error {
	return writeCSVWithHeader(w, []string{"rank", "word", "count", "sentiment"}, func(cw *csv.Writer) error {
		for i, e := range entries {
			rec := []string{
				strconv.Itoa(i + 1),
				e.Word,
				f.count(e.Count),
				f.float(e.Sentiment),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForWords writes the entries with their rank and label.
func writeJSONResultsForWords(w io.Writer, entries []schema.WordEntry) error {
	type JSONWordEntry struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.WordEntry
	}

	output := make([]JSONWordEntry, len(entries))
	for i, e := range entries {
		output[i] = JSONWordEntry{
			Rank:      i + 1,
			Label:     contract.GetPlainLabel(schema.Metric(e.Sentiment)),
			WordEntry: e,
		}
	}
	return writeJSON(w, output)
}
