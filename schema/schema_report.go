package schema

import "time"

// PeriodBucket is the snapshot of one fixed-width window of the corpus.
// Bounds are inclusive on both ends, so a message sitting exactly on a
// boundary belongs to both neighbouring buckets.
type PeriodBucket struct {
	Index                      int             `json:"index"`
	StartDate                  time.Time       `json:"startDate"`
	EndDate                    time.Time       `json:"endDate"`
	TotalMessages              int             `json:"totalMessages"`
	TotalWords                 int             `json:"totalWords"`
	TotalUniqueWords           int             `json:"totalUniqueWords"`
	TotalFirstTimeWords        int             `json:"totalFirstTimeWords"`
	TotalProfanity             int             `json:"totalProfanity"`
	AverageWordsPerMessage     Metric          `json:"averageWordsPerMessage"`
	AverageSentiment           Metric          `json:"averageSentiment"`
	AverageProfanityPerMessage Metric          `json:"averageProfanityPerMessage"`
	WordFrequency              *FrequencyTable `json:"wordFrequency"`
	ProfanityFrequency         *FrequencyTable `json:"profanityFrequency"`
}

// IsEmpty reports whether no message fell into the bucket.
func (b PeriodBucket) IsEmpty() bool {
	return b.TotalMessages == 0
}

// Report is the full analytics result for one corpus.
type Report struct {
	TotalMessages              int             `json:"totalMessages"`
	TotalWords                 int             `json:"totalWords"`
	TotalUniqueWords           int             `json:"totalUniqueWords"`
	AverageWordsPerMessage     Metric          `json:"averageWordsPerMessage"`
	TotalProfanity             int             `json:"totalProfanity"`
	AverageProfanityPerMessage Metric          `json:"averageProfanityPerMessage"`
	AverageSentiment           Metric          `json:"averageSentiment"`
	WordFrequency              *FrequencyTable `json:"wordFrequency"`
	ProfanityFrequency         *FrequencyTable `json:"profanityFrequency"`
	DataPeriods                []PeriodBucket  `json:"dataPeriods"`
}

// ReportSummary is the scalar part of a Report, used where frequency tables
// would be too large to print.
type ReportSummary struct {
	TotalMessages              int    `json:"totalMessages"`
	TotalWords                 int    `json:"totalWords"`
	TotalUniqueWords           int    `json:"totalUniqueWords"`
	AverageWordsPerMessage     Metric `json:"averageWordsPerMessage"`
	TotalProfanity             int    `json:"totalProfanity"`
	AverageProfanityPerMessage Metric `json:"averageProfanityPerMessage"`
	AverageSentiment           Metric `json:"averageSentiment"`
	TotalPeriods               int    `json:"totalPeriods"`
}

// Summary returns the scalar fields of the report.
func (r *Report) Summary() ReportSummary {
	return ReportSummary{
		TotalMessages:              r.TotalMessages,
		TotalWords:                 r.TotalWords,
		TotalUniqueWords:           r.TotalUniqueWords,
		AverageWordsPerMessage:     r.AverageWordsPerMessage,
		TotalProfanity:             r.TotalProfanity,
		AverageProfanityPerMessage: r.AverageProfanityPerMessage,
		AverageSentiment:           r.AverageSentiment,
		TotalPeriods:               len(r.DataPeriods),
	}
}

// PeriodRow is a PeriodBucket without its frequency tables, for tabular output.
type PeriodRow struct {
	Index                      int       `json:"index"`
	StartDate                  time.Time `json:"startDate"`
	EndDate                    time.Time `json:"endDate"`
	TotalMessages              int       `json:"totalMessages"`
	TotalWords                 int       `json:"totalWords"`
	TotalUniqueWords           int       `json:"totalUniqueWords"`
	TotalFirstTimeWords        int       `json:"totalFirstTimeWords"`
	TotalProfanity             int       `json:"totalProfanity"`
	AverageWordsPerMessage     Metric    `json:"averageWordsPerMessage"`
	AverageSentiment           Metric    `json:"averageSentiment"`
	AverageProfanityPerMessage Metric    `json:"averageProfanityPerMessage"`
	TopWord                    string    `json:"topWord"`
}

// Row flattens the bucket.
func (b PeriodBucket) Row() PeriodRow {
	row := PeriodRow{
		Index:                      b.Index,
		StartDate:                  b.StartDate,
		EndDate:                    b.EndDate,
		TotalMessages:              b.TotalMessages,
		TotalWords:                 b.TotalWords,
		TotalUniqueWords:           b.TotalUniqueWords,
		TotalFirstTimeWords:        b.TotalFirstTimeWords,
		TotalProfanity:             b.TotalProfanity,
		AverageWordsPerMessage:     b.AverageWordsPerMessage,
		AverageSentiment:           b.AverageSentiment,
		AverageProfanityPerMessage: b.AverageProfanityPerMessage,
	}
	if top := b.WordFrequency.Top(1); len(top) == 1 {
		row.TopWord = top[0].Word
	}
	return row
}

// PeriodRows flattens every bucket of the report.
func (r *Report) PeriodRows() []PeriodRow {
	rows := make([]PeriodRow, len(r.DataPeriods))
	for i, b := range r.DataPeriods {
		rows[i] = b.Row()
	}
	return rows
}
