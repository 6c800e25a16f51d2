package agg

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/chatstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// stubLexicon scores a word by its length and treats "darn" and "heck" as
// profane. It counts calls so tests can check memoization.
type stubLexicon struct {
	scoreCalls   map[string]int
	profaneCalls map[string]int
}

func newStubLexicon() *stubLexicon {
	return &stubLexicon{scoreCalls: map[string]int{}, profaneCalls: map[string]int{}}
}

func (s *stubLexicon) ScoreWord(word string) float64 {
	s.scoreCalls[word]++
	return float64(len(word))
}

func (s *stubLexicon) IsProfane(word string) bool {
	s.profaneCalls[word]++
	return word == "darn" || word == "heck"
}

func msgAt(offset time.Duration, sentiment float64, matches int, tokens ...string) schema.ScoredMessage {
	return schema.ScoredMessage{
		NormalizedMessage: schema.NormalizedMessage{Timestamp: epoch.Add(offset), Tokens: tokens},
		Sentiment:         sentiment,
		ProfanityMatches:  matches,
	}
}

func TestGlobal(t *testing.T) {
	msgs := []schema.ScoredMessage{
		msgAt(0, 1, 0, "hello", "world"),
		msgAt(day, -1, 1, "darn", "world", "42"),
		msgAt(2*day, 3, 2, "heck", "darn", "darn"),
	}
	r := Global(msgs, newStubLexicon())

	assert.Equal(t, 3, r.TotalMessages)
	assert.Equal(t, 8, r.TotalWords)
	assert.Equal(t, 4, r.TotalUniqueWords)
	assert.Equal(t, 2, r.TotalProfanity)
	assert.InDelta(t, 8.0/3, r.AverageWordsPerMessage.Float(), 1e-9)
	assert.InDelta(t, 1.0, r.AverageSentiment.Float(), 1e-9)
	assert.InDelta(t, 1.0, r.AverageProfanityPerMessage.Float(), 1e-9)

	assert.Equal(t, []string{"darn", "world", "hello", "heck"}, r.WordFrequency.Words())
	rec, ok := r.WordFrequency.Get("darn")
	require.True(t, ok)
	assert.Equal(t, schema.WordRecord{Count: 3, Sentiment: 4}, rec)
	_, ok = r.WordFrequency.Get("42")
	assert.False(t, ok)

	assert.Equal(t, []string{"darn", "heck"}, r.ProfanityFrequency.Words())
	assert.Equal(t, 4, r.ProfanityFrequency.Total())
	assert.Empty(t, r.DataPeriods)
}

func TestGlobalFrequencyTotalsExcludeNumbers(t *testing.T) {
	msgs := []schema.ScoredMessage{
		msgAt(0, 0, 0, "one", "1", "two", "1e3"),
		msgAt(day, 0, 0, "0x10", "two", "three"),
	}
	r := Global(msgs, newStubLexicon())
	assert.Equal(t, r.TotalWords-3, r.WordFrequency.Total())
}

func TestEmptyCorpus(t *testing.T) {
	lex := newStubLexicon()
	r := Global(nil, lex)
	assert.Equal(t, 0, r.TotalMessages)
	assert.True(t, r.AverageWordsPerMessage.IsNoData())
	assert.True(t, r.AverageSentiment.IsNoData())
	assert.True(t, r.AverageProfanityPerMessage.IsNoData())
	assert.Equal(t, 0, r.WordFrequency.Len())

	buckets := Periods(nil, lex, NewSeenWords(), DefaultOptions())
	assert.Empty(t, buckets)
}

func TestBucketCount(t *testing.T) {
	tests := []struct {
		span     time.Duration
		expected int
	}{
		{0, 1},
		{time.Second, 1},
		{30 * day, 1},
		{30*day + time.Nanosecond, 2},
		{31 * day, 2},
		{90 * day, 3},
	}
	for _, tt := range tests {
		t.Run(tt.span.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, BucketCount(epoch, epoch.Add(tt.span), DefaultPeriodWidth))
		})
	}
}

func TestPeriodsConcreteScenario(t *testing.T) {
	msgs := []schema.ScoredMessage{
		msgAt(31*day, 0, 0, "great"),
		msgAt(0, 0, 0, "good", "good", "bad"),
		msgAt(29*day, 0, 0, "bad"),
	}
	buckets := Periods(msgs, newStubLexicon(), NewSeenWords(), DefaultOptions())
	require.Len(t, buckets, 2)

	b0 := buckets[0]
	assert.Equal(t, epoch, b0.StartDate)
	assert.Equal(t, epoch.Add(30*day), b0.EndDate)
	assert.Equal(t, 2, b0.TotalMessages)
	assert.Equal(t, 4, b0.TotalWords)
	assert.Equal(t, 2, b0.TotalUniqueWords)
	assert.Equal(t, 2, b0.TotalFirstTimeWords)
	good, _ := b0.WordFrequency.Get("good")
	assert.Equal(t, 2, good.Count)

	b1 := buckets[1]
	assert.Equal(t, 1, b1.Index)
	assert.Equal(t, epoch.Add(30*day), b1.StartDate)
	assert.Equal(t, 1, b1.TotalMessages)
	assert.Equal(t, []string{"great"}, b1.WordFrequency.Words())
	assert.Equal(t, 1, b1.TotalFirstTimeWords)
}

func TestPeriodsCountConservation(t *testing.T) {
	t.Run("no boundary messages", func(t *testing.T) {
		msgs := []schema.ScoredMessage{
			msgAt(0, 0, 0, "aa"),
			msgAt(10*day, 0, 0, "bb"),
			msgAt(45*day, 0, 0, "cc"),
			msgAt(70*day, 0, 0, "dd"),
		}
		buckets := Periods(msgs, newStubLexicon(), NewSeenWords(), DefaultOptions())
		require.Len(t, buckets, 3)
		sum := 0
		for _, b := range buckets {
			sum += b.TotalMessages
		}
		assert.Equal(t, len(msgs), sum)
	})

	t.Run("boundary message counted twice", func(t *testing.T) {
		msgs := []schema.ScoredMessage{
			msgAt(0, 0, 0, "aa"),
			msgAt(30*day, 0, 0, "bb"),
			msgAt(45*day, 0, 0, "cc"),
		}
		buckets := Periods(msgs, newStubLexicon(), NewSeenWords(), DefaultOptions())
		require.Len(t, buckets, 2)
		assert.Equal(t, 2, buckets[0].TotalMessages)
		assert.Equal(t, 2, buckets[1].TotalMessages)
		assert.Greater(t, buckets[0].TotalMessages+buckets[1].TotalMessages, len(msgs))

		// the duplicated word is only new once
		assert.Equal(t, 2, buckets[0].TotalFirstTimeWords)
		assert.Equal(t, 1, buckets[1].TotalFirstTimeWords)
	})
}

func TestPeriodsEmptyBucket(t *testing.T) {
	msgs := []schema.ScoredMessage{
		msgAt(0, 0, 0, "aa"),
		msgAt(65*day, 0, 0, "bb"),
	}
	buckets := Periods(msgs, newStubLexicon(), NewSeenWords(), DefaultOptions())
	require.Len(t, buckets, 3)
	assert.True(t, buckets[1].IsEmpty())
	assert.True(t, buckets[1].AverageSentiment.IsNoData())
	assert.Equal(t, 0, buckets[1].WordFrequency.Len())
}

func TestPeriodsFirstTimeWordsAreMonotone(t *testing.T) {
	msgs := []schema.ScoredMessage{
		msgAt(0, 0, 0, "alpha", "beta", "7"),
		msgAt(5*day, 0, 0, "beta", "gamma"),
		msgAt(40*day, 0, 0, "alpha", "delta"),
		msgAt(80*day, 0, 0, "epsilon", "gamma", "beta"),
	}
	seen := NewSeenWords()
	buckets := Periods(msgs, newStubLexicon(), seen, DefaultOptions())

	sum := 0
	for _, b := range buckets {
		assert.GreaterOrEqual(t, b.TotalFirstTimeWords, 0)
		sum += b.TotalFirstTimeWords
	}
	assert.Equal(t, Global(msgs, newStubLexicon()).TotalUniqueWords, sum)
	assert.Equal(t, sum, seen.Len())
	assert.False(t, seen.Contains("7"))
}

func TestPeriodsSeenWordsCarryOver(t *testing.T) {
	seen := NewSeenWords()
	seen.Add("alpha")
	buckets := Periods([]schema.ScoredMessage{msgAt(0, 0, 0, "alpha", "beta")}, newStubLexicon(), seen, DefaultOptions())
	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets[0].TotalFirstTimeWords)
}

func TestPeriodsTablesSortedByCount(t *testing.T) {
	msgs := []schema.ScoredMessage{
		msgAt(0, 0, 1, "aa", "darn", "bb", "bb", "heck", "heck", "heck"),
		msgAt(day, 0, 0, "cc", "bb"),
	}
	buckets := Periods(msgs, newStubLexicon(), NewSeenWords(), DefaultOptions())
	require.Len(t, buckets, 1)
	for _, table := range []*schema.FrequencyTable{buckets[0].WordFrequency, buckets[0].ProfanityFrequency} {
		entries := table.Entries()
		for i := 1; i < len(entries); i++ {
			assert.GreaterOrEqual(t, entries[i-1].Count, entries[i].Count)
		}
	}
	assert.Equal(t, []string{"bb", "heck", "aa", "darn", "cc"}, buckets[0].WordFrequency.Words())
	assert.Equal(t, []string{"heck", "darn"}, buckets[0].ProfanityFrequency.Words())
}

// Truncation keeps the first 50 words by insertion order, not the 50 most
// frequent. Words 51-60 are the most frequent yet never make the table.
func TestPeriodsTopNKeepsInsertionOrder(t *testing.T) {
	var tokens []string
	for i := 1; i <= 60; i++ {
		tokens = append(tokens, fmt.Sprintf("w%02d", i))
	}
	var late []string
	for i := 51; i <= 60; i++ {
		for j := 0; j < 5; j++ {
			late = append(late, fmt.Sprintf("w%02d", i))
		}
	}
	msgs := []schema.ScoredMessage{
		msgAt(0, 0, 0, tokens...),
		msgAt(day, 0, 0, late...),
	}
	buckets := Periods(msgs, newStubLexicon(), NewSeenWords(), DefaultOptions())
	require.Len(t, buckets, 1)
	b := buckets[0]

	assert.Equal(t, 50, b.WordFrequency.Len())
	assert.Equal(t, 60, b.TotalUniqueWords)
	assert.Equal(t, 60, b.TotalFirstTimeWords)
	for i := 51; i <= 60; i++ {
		_, ok := b.WordFrequency.Get(fmt.Sprintf("w%02d", i))
		assert.False(t, ok)
	}
	assert.Equal(t, "w01", b.WordFrequency.Words()[0])

	// the global table has no bound
	g := Global(msgs, newStubLexicon())
	assert.Equal(t, 60, g.WordFrequency.Len())
	assert.Equal(t, "w51", g.WordFrequency.Words()[0])
}

// profaneLexicon treats every word starting with "p" as profane.
type profaneLexicon struct{}

func (profaneLexicon) ScoreWord(string) float64 { return -1 }

func (profaneLexicon) IsProfane(word string) bool { return strings.HasPrefix(word, "p") }

// The profanity table follows the same first-50-by-insertion rule.
func TestPeriodsProfanityTopNKeepsInsertionOrder(t *testing.T) {
	var tokens []string
	for i := 1; i <= 60; i++ {
		tokens = append(tokens, fmt.Sprintf("p%02d", i))
	}
	var late []string
	for i := 51; i <= 60; i++ {
		for j := 0; j < 5; j++ {
			late = append(late, fmt.Sprintf("p%02d", i))
		}
	}
	msgs := []schema.ScoredMessage{
		msgAt(0, 0, 1, append(tokens, "fine")...),
		msgAt(day, 0, 1, late...),
	}
	buckets := Periods(msgs, profaneLexicon{}, NewSeenWords(), DefaultOptions())
	require.Len(t, buckets, 1)
	b := buckets[0]

	assert.Equal(t, 50, b.ProfanityFrequency.Len())
	assert.Equal(t, 50, b.WordFrequency.Len())
	assert.Equal(t, 2, b.TotalProfanity)
	for i := 51; i <= 60; i++ {
		_, ok := b.ProfanityFrequency.Get(fmt.Sprintf("p%02d", i))
		assert.False(t, ok)
	}
	assert.Equal(t, "p01", b.ProfanityFrequency.Words()[0])
	assert.Equal(t, "p50", b.ProfanityFrequency.Words()[49])
	_, ok := b.ProfanityFrequency.Get("fine")
	assert.False(t, ok)

	g := Global(msgs, profaneLexicon{})
	assert.Equal(t, 60, g.ProfanityFrequency.Len())
	assert.Equal(t, 6, g.ProfanityFrequency.Top(1)[0].Count)
	assert.Equal(t, "p51", g.ProfanityFrequency.Words()[0])
}

func TestPeriodsUnboundedTopN(t *testing.T) {
	var tokens []string
	for i := 0; i < 70; i++ {
		tokens = append(tokens, fmt.Sprintf("w%02d", i))
	}
	buckets := Periods([]schema.ScoredMessage{msgAt(0, 0, 0, tokens...)}, newStubLexicon(), NewSeenWords(), Options{TopN: 0})
	require.Len(t, buckets, 1)
	assert.Equal(t, 70, buckets[0].WordFrequency.Len())
}

func TestPeriodsProgress(t *testing.T) {
	msgs := []schema.ScoredMessage{
		msgAt(0, 0, 0, "aa"),
		msgAt(75*day, 0, 0, "bb"),
	}
	var calls [][2]int
	opts := DefaultOptions()
	opts.Progress = func(current, total int) {
		calls = append(calls, [2]int{current, total})
	}
	Periods(msgs, newStubLexicon(), NewSeenWords(), opts)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestPeriodsDoNotReorderInput(t *testing.T) {
	msgs := []schema.ScoredMessage{
		msgAt(2*day, 0, 0, "cc"),
		msgAt(0, 0, 0, "aa"),
	}
	Periods(msgs, newStubLexicon(), NewSeenWords(), DefaultOptions())
	assert.Equal(t, []string{"cc"}, msgs[0].Tokens)
}

func TestMemoCachesLookups(t *testing.T) {
	lex := newStubLexicon()
	memo := NewMemo(lex)
	msgs := []schema.ScoredMessage{
		msgAt(0, 0, 0, "aa", "aa", "darn"),
		msgAt(40*day, 0, 0, "aa", "darn"),
	}
	Global(msgs, memo)
	Periods(msgs, memo, NewSeenWords(), DefaultOptions())

	assert.Equal(t, 1, lex.scoreCalls["aa"])
	assert.Equal(t, 1, lex.scoreCalls["darn"])
	assert.Equal(t, 1, lex.profaneCalls["aa"])
}
