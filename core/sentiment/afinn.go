package sentiment

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/kljensen/snowball/english"
)

//go:embed data/afinn_en.tsv
var afinnEN []byte

var negations = map[string]struct{}{
	"not":     {},
	"no":      {},
	"never":   {},
	"neither": {},
}

// AFINN is a lexicon analyzer. Each token is looked up as written and, when
// absent, by its English stem. A negation word flips the sign of every hit
// after it in the same sequence.
type AFINN struct {
	lexicon map[string]int
	stemmed map[string]int
}

var _ Analyzer = (*AFINN)(nil) // Compile-time check

// NewAFINN builds an analyzer from a word -> score map.
func NewAFINN(lexicon map[string]int) *AFINN {
	stemmed := make(map[string]int, len(lexicon))
	for _, word := range slices.Sorted(maps.Keys(lexicon)) {
		stem := english.Stem(word, false)
		if _, taken := stemmed[stem]; !taken || stem == word {
			stemmed[stem] = lexicon[word]
		}
	}
	return &AFINN{lexicon: lexicon, stemmed: stemmed}
}

// DefaultAFINN returns the analyzer for the embedded lexicon.
func DefaultAFINN() *AFINN {
	lexicon, err := LoadLexicon(bytes.NewReader(afinnEN))
	if err != nil {
		panic(err) // embedded data is static
	}
	return NewAFINN(lexicon)
}

// LoadLexicon reads AFINN "word<TAB>score" lines. Lines starting with '#'
// and blank lines are skipped.
func LoadLexicon(r io.Reader) (map[string]int, error) {
	lexicon := map[string]int{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.LastIndexByte(line, '\t')
		if idx <= 0 {
			return nil, fmt.Errorf("lexicon line %d: missing tab separator", lineNo)
		}
		score, err := strconv.Atoi(strings.TrimSpace(line[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: %w", lineNo, err)
		}
		lexicon[strings.ToLower(strings.TrimSpace(line[:idx]))] = score
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return lexicon, nil
}

// GetSentiment implements Analyzer. The result is the summed score divided
// by the number of tokens, so an empty sequence yields NaN.
func (a *AFINN) GetSentiment(tokens []string) float64 {
	if len(tokens) == 0 {
		return math.NaN()
	}
	negator := 1
	sum := 0
	for _, tok := range tokens {
		if _, ok := negations[tok]; ok {
			negator = -1
			continue
		}
		if score, ok := a.lookup(tok); ok {
			sum += negator * score
		}
	}
	return float64(sum) / float64(len(tokens))
}

func (a *AFINN) lookup(word string) (int, bool) {
	if score, ok := a.lexicon[word]; ok {
		return score, true
	}
	score, ok := a.stemmed[english.Stem(word, false)]
	return score, ok
}
