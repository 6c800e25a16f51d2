package agg

import "github.com/huangsam/chatstats/schema"

// Global computes the corpus-wide statistics in a single pass. Frequency
// tables are unbounded and sorted by descending count. DataPeriods is left
// empty for the caller to fill.
func Global(msgs []schema.ScoredMessage, lex Lexicon) *schema.Report {
	t := newTally()
	for _, msg := range msgs {
		t.add(msg, lex, nil)
	}
	t.wordFreq.SortByCount()
	t.profanity.SortByCount()

	return &schema.Report{
		TotalMessages:              t.messages,
		TotalWords:                 t.words,
		TotalUniqueWords:           t.uniqueWords(),
		AverageWordsPerMessage:     t.averageWords(),
		TotalProfanity:             t.profane,
		AverageProfanityPerMessage: t.averageProfanity(),
		AverageSentiment:           t.averageSentiment(),
		WordFrequency:              t.wordFreq,
		ProfanityFrequency:         t.profanity,
		DataPeriods:                []schema.PeriodBucket{},
	}
}
