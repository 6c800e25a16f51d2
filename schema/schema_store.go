package schema

import "time"

// RunRecord represents a row from the chatstats_report_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalMessages int32
	TotalPeriods  int32
	ArchivePath   string
	ConfigParams  *string
}

// PeriodRecord represents a row from the chatstats_period_snapshots table.
// Averages are nil when the period held no messages.
type PeriodRecord struct {
	RunID                      int64
	PeriodIndex                int32
	StartDate                  time.Time
	EndDate                    time.Time
	TotalMessages              int32
	TotalWords                 int32
	TotalUniqueWords           int32
	TotalFirstTimeWords        int32
	TotalProfanity             int32
	AverageWordsPerMessage     *float64
	AverageSentiment           *float64
	AverageProfanityPerMessage *float64
	TopWord                    *string
}

// NewPeriodRecord converts a bucket into its stored form.
func NewPeriodRecord(runID int64, b PeriodBucket) PeriodRecord {
	row := b.Row()
	rec := PeriodRecord{
		RunID:                      runID,
		PeriodIndex:                int32(row.Index),
		StartDate:                  row.StartDate,
		EndDate:                    row.EndDate,
		TotalMessages:              int32(row.TotalMessages),
		TotalWords:                 int32(row.TotalWords),
		TotalUniqueWords:           int32(row.TotalUniqueWords),
		TotalFirstTimeWords:        int32(row.TotalFirstTimeWords),
		TotalProfanity:             int32(row.TotalProfanity),
		AverageWordsPerMessage:     row.AverageWordsPerMessage.Ptr(),
		AverageSentiment:           row.AverageSentiment.Ptr(),
		AverageProfanityPerMessage: row.AverageProfanityPerMessage.Ptr(),
	}
	if row.TopWord != "" {
		top := row.TopWord
		rec.TopWord = &top
	}
	return rec
}
