package agg

import (
	"github.com/huangsam/chatstats/core/text"
	"github.com/huangsam/chatstats/schema"
)

// tally accumulates the statistics shared by the global report and by each
// period bucket.
type tally struct {
	messages     int
	words        int
	profane      int
	sentimentSum float64
	matchSum     float64
	wordFreq     *schema.FrequencyTable
	profanity    *schema.FrequencyTable
}

func newTally() *tally {
	return &tally{
		wordFreq:  schema.NewFrequencyTable(),
		profanity: schema.NewFrequencyTable(),
	}
}

// add folds one message in. onWord, when set, sees every non-numeric token
// in encounter order.
func (t *tally) add(msg schema.ScoredMessage, lex Lexicon, onWord func(string)) {
	t.messages++
	t.words += len(msg.Tokens)
	t.sentimentSum += msg.Sentiment
	t.matchSum += float64(msg.ProfanityMatches)
	if msg.HasProfanity() {
		t.profane++
	}
	for _, tok := range msg.Tokens {
		if text.IsNumeric(tok) {
			continue
		}
		t.wordFreq.Observe(tok, lex.ScoreWord)
		if lex.IsProfane(tok) {
			t.profanity.Observe(tok, lex.ScoreWord)
		}
		if onWord != nil {
			onWord(tok)
		}
	}
}

// uniqueWords is only meaningful before the tables are truncated.
func (t *tally) uniqueWords() int {
	return t.wordFreq.Len()
}

func (t *tally) averageWords() schema.Metric {
	return schema.Ratio(float64(t.words), t.messages)
}

func (t *tally) averageSentiment() schema.Metric {
	return schema.Ratio(t.sentimentSum, t.messages)
}

func (t *tally) averageProfanity() schema.Metric {
	return schema.Ratio(t.matchSum, t.messages)
}
