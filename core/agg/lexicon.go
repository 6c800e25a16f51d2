// Package agg folds scored chat messages into corpus-wide and per-period
// statistics.
package agg

// Lexicon answers the per-word questions the frequency tables need.
type Lexicon interface {
	ScoreWord(word string) float64
	IsProfane(word string) bool
}

// Memo caches Lexicon answers for the lifetime of one run. It is not safe
// for concurrent use.
type Memo struct {
	lex       Lexicon
	sentiment map[string]float64
	profane   map[string]bool
}

var _ Lexicon = (*Memo)(nil) // Compile-time check

// NewMemo wraps lex.
func NewMemo(lex Lexicon) *Memo {
	return &Memo{
		lex:       lex,
		sentiment: make(map[string]float64),
		profane:   make(map[string]bool),
	}
}

// ScoreWord implements Lexicon.
func (m *Memo) ScoreWord(word string) float64 {
	if v, ok := m.sentiment[word]; ok {
		return v
	}
	v := m.lex.ScoreWord(word)
	m.sentiment[word] = v
	return v
}

// IsProfane implements Lexicon.
func (m *Memo) IsProfane(word string) bool {
	if v, ok := m.profane[word]; ok {
		return v
	}
	v := m.lex.IsProfane(word)
	m.profane[word] = v
	return v
}

// SeenWords is the set of words met so far in chronological processing.
// It only grows.
type SeenWords struct {
	words map[string]struct{}
}

// NewSeenWords returns an empty set.
func NewSeenWords() *SeenWords {
	return &SeenWords{words: make(map[string]struct{})}
}

// Add records word and reports whether it was new.
func (s *SeenWords) Add(word string) bool {
	if _, ok := s.words[word]; ok {
		return false
	}
	s.words[word] = struct{}{}
	return true
}

// Contains reports whether word was already added.
func (s *SeenWords) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Len returns the number of distinct words seen.
func (s *SeenWords) Len() int {
	return len(s.words)
}
