// Package profanity matches chat tokens against a list of case-insensitive
// regular expressions.
package profanity

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

//go:embed data/patterns.json
var patternsJSON []byte

// ErrEmptyPattern is returned when a pattern list contains an empty entry,
// which would match every message.
var ErrEmptyPattern = errors.New("empty profanity pattern")

// Scanner holds a compiled pattern set. It is read-only after loading and
// safe for concurrent use.
type Scanner struct {
	patterns []*regexp.Regexp
	sources  []string
}

// LoadPatterns reads a JSON array of pattern strings. Every pattern is
// compiled case-insensitively; the first failure aborts the load.
func LoadPatterns(r io.Reader) (*Scanner, error) {
	var sources []string
	if err := json.NewDecoder(r).Decode(&sources); err != nil {
		return nil, fmt.Errorf("failed to decode patterns: %w", err)
	}
	return NewScanner(sources)
}

// NewScanner compiles sources into a Scanner.
func NewScanner(sources []string) (*Scanner, error) {
	s := &Scanner{
		patterns: make([]*regexp.Regexp, 0, len(sources)),
		sources:  make([]string, 0, len(sources)),
	}
	for _, src := range sources {
		if strings.TrimSpace(src) == "" {
			return nil, ErrEmptyPattern
		}
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", src, err)
		}
		s.patterns = append(s.patterns, re)
		s.sources = append(s.sources, src)
	}
	return s, nil
}

// DefaultScanner returns the scanner for the embedded pattern list.
func DefaultScanner() *Scanner {
	s, err := LoadPatterns(bytes.NewReader(patternsJSON))
	if err != nil {
		panic(err) // embedded data is static
	}
	return s
}

// Len returns the number of patterns.
func (s *Scanner) Len() int { return len(s.patterns) }

// Scan returns how many patterns match a message. The tokens are joined with
// "," and each pattern counts at most once however often it matches.
func (s *Scanner) Scan(tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	joined := strings.Join(tokens, ",")
	count := 0
	for _, re := range s.patterns {
		if re.MatchString(joined) {
			count++
		}
	}
	return count
}

// ScanWord returns the source of every pattern matching word.
func (s *Scanner) ScanWord(word string) []string {
	var matched []string
	for i, re := range s.patterns {
		if re.MatchString(word) {
			matched = append(matched, s.sources[i])
		}
	}
	return matched
}
