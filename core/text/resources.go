package text

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strings"
)

//go:embed data/stopwords_en.txt
var stopWordsEN []byte

//go:embed data/contractions_en.txt
var contractionsEN []byte

// WordSet is a StopWords backed by a set.
type WordSet map[string]struct{}

var _ StopWords = WordSet{} // Compile-time check

// IsStopWord implements StopWords.
func (s WordSet) IsStopWord(word string) bool {
	_, ok := s[word]
	return ok
}

// LoadStopWords reads one word per line. Blank lines and lines starting with
// '#' are ignored, words are lowercased.
func LoadStopWords(r io.Reader) (WordSet, error) {
	set := WordSet{}
	err := eachLine(r, func(line string) error {
		set[strings.ToLower(line)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read stop words: %w", err)
	}
	return set, nil
}

// DefaultStopWords returns the embedded English stop-word list.
func DefaultStopWords() WordSet {
	set, err := LoadStopWords(bytes.NewReader(stopWordsEN))
	if err != nil {
		panic(err) // embedded data is static
	}
	return set
}

// contractionRunRe matches the spans a contraction can occupy.
var contractionRunRe = regexp.MustCompile(`[A-Za-z0-9_']+`)

// ContractionTable is an Expander driven by a contraction -> expansion map.
type ContractionTable map[string]string

var _ Expander = ContractionTable{} // Compile-time check

// Expand implements Expander. Matching is case-insensitive; expansions are
// emitted as written in the table.
func (c ContractionTable) Expand(text string) string {
	if !strings.Contains(text, "'") {
		return text
	}
	return contractionRunRe.ReplaceAllStringFunc(text, func(run string) string {
		if exp, ok := c[strings.ToLower(run)]; ok {
			return exp
		}
		core := strings.Trim(run, "'")
		if core == run || core == "" {
			return run
		}
		exp, ok := c[strings.ToLower(core)]
		if !ok {
			return run
		}
		start := strings.Index(run, core)
		return run[:start] + exp + run[start+len(core):]
	})
}

// LoadContractions reads "contraction=expansion" lines.
func LoadContractions(r io.Reader) (ContractionTable, error) {
	table := ContractionTable{}
	err := eachLine(r, func(line string) error {
		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("malformed contraction line %q", line)
		}
		table[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read contractions: %w", err)
	}
	return table, nil
}

// DefaultContractions returns the embedded English contraction table.
func DefaultContractions() ContractionTable {
	table, err := LoadContractions(bytes.NewReader(contractionsEN))
	if err != nil {
		panic(err) // embedded data is static
	}
	return table
}

func eachLine(r io.Reader, fn func(string) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
