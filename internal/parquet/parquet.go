// Package parquet provides data structures and functions for exporting chatstats
// reports and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/chatstats/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRun represents a single report run with metadata.
// This struct maps to the chatstats_report_runs database table.
type ReportRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalMessages is the number of messages in the analyzed corpus
	TotalMessages int32 `parquet:"total_messages,snappy"`

	// TotalPeriods is the number of period buckets the run produced
	TotalPeriods int32 `parquet:"total_periods,snappy"`

	// ArchivePath is the archive the run read
	ArchivePath string `parquet:"archive_path,snappy,dict"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// PeriodSnapshot is the flattened form of one period bucket.
// This struct maps to the chatstats_period_snapshots database table.
// Averages are null for periods without messages.
type PeriodSnapshot struct {
	RunID                      int64     `parquet:"run_id,snappy"`
	PeriodIndex                int32     `parquet:"period_index,snappy"`
	StartDate                  time.Time `parquet:"start_date,snappy"`
	EndDate                    time.Time `parquet:"end_date,snappy"`
	TotalMessages              int32     `parquet:"total_messages,snappy"`
	TotalWords                 int32     `parquet:"total_words,snappy"`
	TotalUniqueWords           int32     `parquet:"total_unique_words,snappy"`
	TotalFirstTimeWords        int32     `parquet:"total_first_time_words,snappy"`
	TotalProfanity             int32     `parquet:"total_profanity,snappy"`
	AverageWordsPerMessage     *float64  `parquet:"average_words_per_message,optional,snappy"`
	AverageSentiment           *float64  `parquet:"average_sentiment,optional,snappy"`
	AverageProfanityPerMessage *float64  `parquet:"average_profanity_per_message,optional,snappy"`
	TopWord                    *string   `parquet:"top_word,optional,snappy"`
}

// WordRow is one entry of a frequency table.
type WordRow struct {
	// Kind is "words" or "profanity"
	Kind      string  `parquet:"kind,snappy,dict"`
	Rank      int32   `parquet:"rank,snappy"`
	Word      string  `parquet:"word,snappy"`
	Count     int32   `parquet:"count,snappy"`
	Sentiment float64 `parquet:"sentiment,snappy"`
}

// writeParquet writes rows to outputPath using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteReportRunsParquet writes a slice of ReportRun structs to a Parquet file.
func WriteReportRunsParquet(data []ReportRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePeriodSnapshotsParquet writes a slice of PeriodSnapshot structs to a Parquet file.
func WritePeriodSnapshotsParquet(data []PeriodSnapshot, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteWordsParquet writes a slice of WordRow structs to a Parquet file.
func WriteWordsParquet(data []WordRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to ReportRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []ReportRun {
	result := make([]ReportRun, len(records))
	for i, record := range records {
		result[i] = ReportRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalMessages: record.TotalMessages,
			TotalPeriods:  record.TotalPeriods,
			ArchivePath:   record.ArchivePath,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertPeriodRecords converts schema.PeriodRecord to PeriodSnapshot for Parquet export.
func ConvertPeriodRecords(records []schema.PeriodRecord) []PeriodSnapshot {
	result := make([]PeriodSnapshot, len(records))
	for i, r := range records {
		result[i] = PeriodSnapshot{
			RunID:                      r.RunID,
			PeriodIndex:                r.PeriodIndex,
			StartDate:                  r.StartDate,
			EndDate:                    r.EndDate,
			TotalMessages:              r.TotalMessages,
			TotalWords:                 r.TotalWords,
			TotalUniqueWords:           r.TotalUniqueWords,
			TotalFirstTimeWords:        r.TotalFirstTimeWords,
			TotalProfanity:             r.TotalProfanity,
			AverageWordsPerMessage:     r.AverageWordsPerMessage,
			AverageSentiment:           r.AverageSentiment,
			AverageProfanityPerMessage: r.AverageProfanityPerMessage,
			TopWord:                    r.TopWord,
		}
	}
	return result
}

// ConvertPeriodBuckets flattens the buckets of a report that was never stored.
// RunID is zero for those rows.
func ConvertPeriodBuckets(buckets []schema.PeriodBucket) []PeriodSnapshot {
	records := make([]schema.PeriodRecord, len(buckets))
	for i, b := range buckets {
		records[i] = schema.NewPeriodRecord(0, b)
	}
	return ConvertPeriodRecords(records)
}

// ConvertWordEntries ranks entries in table order.
func ConvertWordEntries(entries []schema.WordEntry, kind schema.FrequencyKind) []WordRow {
	result := make([]WordRow, len(entries))
	for i, e := range entries {
		result[i] = WordRow{
			Kind:      string(kind),
			Rank:      int32(i + 1),
			Word:      e.Word,
			Count:     int32(e.Count),
			Sentiment: e.Sentiment,
		}
	}
	return result
}
