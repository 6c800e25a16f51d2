package sentiment

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAFINNGetSentiment(t *testing.T) {
	a := DefaultAFINN()

	tests := []struct {
		name     string
		tokens   []string
		expected float64
	}{
		{"single positive", []string{"love"}, 3},
		{"single negative", []string{"hate"}, -3},
		{"averaged over all tokens", []string{"love", "pizza"}, 1.5},
		{"unknown word", []string{"pizza"}, 0},
		{"stem fallback", []string{"happiness"}, 3},
		{"negation flips later hits", []string{"not", "good"}, -1.5},
		{"negation does not flip earlier hits", []string{"good", "never", "bad"}, 6.0 / 3},
		{"chat laughter", []string{"haha"}, 2},
		{"chat acronym", []string{"wtf"}, -4},
		{"chat mixed", []string{"lmao", "wtf"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, a.GetSentiment(tt.tokens), 1e-9)
		})
	}
}

func TestAFINNEmptyIsNaN(t *testing.T) {
	assert.True(t, math.IsNaN(DefaultAFINN().GetSentiment(nil)))
}

func TestScorerCoercesNaN(t *testing.T) {
	s := NewDefaultScorer()
	assert.Equal(t, 0.0, s.Score(nil))
	assert.Equal(t, 0.0, s.Score([]string{}))
	assert.Equal(t, 3.0, s.ScoreWord("love"))
}

type nanAnalyzer struct{}

func (nanAnalyzer) GetSentiment([]string) float64 { return math.NaN() }

func TestScorerWrapsAnyAnalyzer(t *testing.T) {
	s := NewScorer(nanAnalyzer{})
	assert.Equal(t, 0.0, s.Score([]string{"anything"}))
	assert.Equal(t, 0.0, s.ScoreWord("anything"))
}

func TestLoadLexicon(t *testing.T) {
	lexicon, err := LoadLexicon(strings.NewReader("# header\nGood\t3\nnot bad\t2\n\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"good": 3, "not bad": 2}, lexicon)

	_, err = LoadLexicon(strings.NewReader("good 3\n"))
	require.Error(t, err)
	_, err = LoadLexicon(strings.NewReader("good\tthree\n"))
	require.Error(t, err)
}

func TestCustomLexicon(t *testing.T) {
	a := NewAFINN(map[string]int{"ship": 2})
	assert.Equal(t, 2.0, a.GetSentiment([]string{"ship"}))
	assert.Equal(t, 2.0, a.GetSentiment([]string{"shipping"}))
}
