package text

import (
	"strings"
	"unicode"
)

// WordTokenizer splits on every run of characters that are not letters,
// digits or underscores. Apostrophes and hyphens therefore split words.
type WordTokenizer struct{}

var _ Tokenizer = WordTokenizer{} // Compile-time check

// Tokenize implements Tokenizer.
func (WordTokenizer) Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
