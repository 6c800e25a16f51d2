// Package sentiment scores token sequences against a fixed lexicon.
package sentiment

import "math"

// Analyzer is the scoring primitive. It may return NaN when nothing in the
// sequence can be scored.
type Analyzer interface {
	GetSentiment(tokens []string) float64
}

// Scorer wraps an Analyzer so callers never see NaN.
type Scorer struct {
	analyzer Analyzer
}

// NewScorer wraps analyzer.
func NewScorer(analyzer Analyzer) *Scorer {
	return &Scorer{analyzer: analyzer}
}

// NewDefaultScorer wraps the embedded AFINN lexicon.
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultAFINN())
}

// Score returns the sentiment of a message's tokens, or 0 when undefined.
func (s *Scorer) Score(tokens []string) float64 {
	v := s.analyzer.GetSentiment(tokens)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// ScoreWord scores a single word as a one-token sequence.
func (s *Scorer) ScoreWord(word string) float64 {
	return s.Score([]string{word})
}
