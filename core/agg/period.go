package agg

import (
	"sort"
	"time"

	"github.com/huangsam/chatstats/schema"
)

const (
	// DefaultPeriodWidth is the width of one bucket.
	DefaultPeriodWidth = 30 * 24 * time.Hour

	// DefaultPeriodTopN bounds the per-bucket frequency tables.
	DefaultPeriodTopN = 50
)

// Options controls period bucketing.
type Options struct {
	Width    time.Duration
	TopN     int                       // <= 0 keeps every word
	Progress func(current, total int) // called before each bucket, 1-based
}

// DefaultOptions returns 30-day buckets with top-50 tables.
func DefaultOptions() Options {
	return Options{Width: DefaultPeriodWidth, TopN: DefaultPeriodTopN}
}

// SortByTime returns a copy of msgs stably sorted by ascending timestamp.
func SortByTime(msgs []schema.ScoredMessage) []schema.ScoredMessage {
	sorted := make([]schema.ScoredMessage, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// BucketCount returns ceil((newest-oldest)/width), and at least one bucket
// whenever there is a message.
func BucketCount(oldest, newest time.Time, width time.Duration) int {
	span := newest.Sub(oldest)
	n := int(span / width)
	if span%width != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Periods splits msgs into consecutive buckets of opts.Width starting at the
// oldest message. Bucket bounds are inclusive on both ends, so a message
// exactly on a boundary is counted in both neighbours.
//
// seen carries first-time vocabulary across buckets and is updated in
// chronological order. Per-bucket frequency tables keep the first TopN words
// in insertion order and only then sort by count; a frequent word that
// first appears late in the bucket can be dropped.
func Periods(msgs []schema.ScoredMessage, lex Lexicon, seen *SeenWords, opts Options) []schema.PeriodBucket {
	if len(msgs) == 0 {
		return []schema.PeriodBucket{}
	}
	if opts.Width <= 0 {
		opts.Width = DefaultPeriodWidth
	}

	sorted := SortByTime(msgs)
	oldest := sorted[0].Timestamp
	newest := sorted[len(sorted)-1].Timestamp
	total := BucketCount(oldest, newest, opts.Width)

	buckets := make([]schema.PeriodBucket, 0, total)
	for i := 0; i < total; i++ {
		if opts.Progress != nil {
			opts.Progress(i+1, total)
		}
		start := oldest.Add(time.Duration(i) * opts.Width)
		end := start.Add(opts.Width)
		buckets = append(buckets, buildBucket(i, start, end, window(sorted, start, end), lex, seen, opts.TopN))
	}
	return buckets
}

// window returns the messages with start <= ts <= end from a sorted slice.
func window(sorted []schema.ScoredMessage, start, end time.Time) []schema.ScoredMessage {
	lo := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Timestamp.After(end)
	})
	if lo >= hi {
		return nil
	}
	return sorted[lo:hi]
}

func buildBucket(index int, start, end time.Time, msgs []schema.ScoredMessage, lex Lexicon, seen *SeenWords, topN int) schema.PeriodBucket {
	t := newTally()
	firstTime := 0
	onWord := func(word string) {
		if seen.Add(word) {
			firstTime++
		}
	}
	for _, msg := range msgs {
		t.add(msg, lex, onWord)
	}
	unique := t.uniqueWords()

	if topN > 0 {
		t.wordFreq.Truncate(topN)
		t.profanity.Truncate(topN)
	}
	t.wordFreq.SortByCount()
	t.profanity.SortByCount()

	return schema.PeriodBucket{
		Index:                      index,
		StartDate:                  start,
		EndDate:                    end,
		TotalMessages:              t.messages,
		TotalWords:                 t.words,
		TotalUniqueWords:           unique,
		TotalFirstTimeWords:        firstTime,
		TotalProfanity:             t.profane,
		AverageWordsPerMessage:     t.averageWords(),
		AverageSentiment:           t.averageSentiment(),
		AverageProfanityPerMessage: t.averageProfanity(),
		WordFrequency:              t.wordFreq,
		ProfanityFrequency:         t.profanity,
	}
}
