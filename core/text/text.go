// Package text turns raw chat text into the filtered token sequences the
// analyzers consume.
package text

import (
	"strings"
	"unicode/utf8"

	"github.com/huangsam/chatstats/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Expander rewrites contractions into their full lexical form.
type Expander interface {
	Expand(text string) string
}

// Tokenizer splits text on word boundaries.
type Tokenizer interface {
	Tokenize(text string) []string
}

// StopWords answers stop-word membership for a lowercase token.
type StopWords interface {
	IsStopWord(word string) bool
}

// apostrophes are folded to ASCII so contraction lookup sees one form.
var apostropheFolder = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'", "`", "'")

// Filter normalizes message text. It is deterministic and has no failure path.
// A Filter is not safe for concurrent use.
type Filter struct {
	expander  Expander
	tokenizer Tokenizer
	stopWords StopWords
	lower     cases.Caser
}

// NewFilter builds a Filter from its collaborators.
func NewFilter(expander Expander, tokenizer Tokenizer, stopWords StopWords) *Filter {
	return &Filter{
		expander:  expander,
		tokenizer: tokenizer,
		stopWords: stopWords,
		lower:     cases.Lower(language.Und),
	}
}

// NewDefaultFilter builds a Filter backed by the embedded English resources.
func NewDefaultFilter() *Filter {
	return NewFilter(DefaultContractions(), WordTokenizer{}, DefaultStopWords())
}

// Normalize expands contractions, lowercases, tokenizes and then drops stop
// words, single-character tokens and anything containing "http".
func (f *Filter) Normalize(raw string) []string {
	if raw == "" {
		return []string{}
	}
	s := apostropheFolder.Replace(norm.NFKC.String(raw))
	s = f.expander.Expand(s)
	s = f.lower.String(s)

	tokens := f.tokenizer.Tokenize(s)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) <= 1 || strings.Contains(tok, "http") || f.stopWords.IsStopWord(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return kept
}

// NormalizeMessage applies Normalize to a raw message.
func (f *Filter) NormalizeMessage(msg schema.RawMessage) schema.NormalizedMessage {
	return schema.NormalizedMessage{
		Timestamp: msg.Timestamp,
		Tokens:    f.Normalize(msg.Text),
	}
}
