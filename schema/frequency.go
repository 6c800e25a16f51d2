package schema

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// WordRecord is the per-word entry of a frequency table.
type WordRecord struct {
	Count     int     `json:"count"`
	Sentiment float64 `json:"sentiment"`
}

// WordEntry is a WordRecord together with its key, used for listings.
type WordEntry struct {
	Word      string  `json:"word"`
	Count     int     `json:"count"`
	Sentiment float64 `json:"sentiment"`
}

// FrequencyTable maps words to their records and remembers insertion order.
// After SortByCount the iteration order is descending by count with ties
// kept in first-insertion order. JSON encoding preserves that order.
type FrequencyTable struct {
	m *orderedmap.OrderedMap[string, *WordRecord]
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{m: orderedmap.New[string, *WordRecord]()}
}

func (t *FrequencyTable) ensure() {
	if t.m == nil {
		t.m = orderedmap.New[string, *WordRecord]()
	}
}

// Observe increments the count of word. On first sight the word is appended
// with a count of one and its sentiment taken from score.
func (t *FrequencyTable) Observe(word string, score func(string) float64) {
	t.ensure()
	if rec, ok := t.m.Get(word); ok {
		rec.Count++
		return
	}
	t.m.Set(word, &WordRecord{Count: 1, Sentiment: score(word)})
}

// Get returns the record for word.
func (t *FrequencyTable) Get(word string) (WordRecord, bool) {
	if t == nil || t.m == nil {
		return WordRecord{}, false
	}
	rec, ok := t.m.Get(word)
	if !ok {
		return WordRecord{}, false
	}
	return *rec, true
}

// Len returns the number of distinct words.
func (t *FrequencyTable) Len() int {
	if t == nil || t.m == nil {
		return 0
	}
	return t.m.Len()
}

// Total returns the sum of all counts.
func (t *FrequencyTable) Total() int {
	total := 0
	for _, e := range t.Entries() {
		total += e.Count
	}
	return total
}

// Words returns the keys in iteration order.
func (t *FrequencyTable) Words() []string {
	entries := t.Entries()
	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.Word
	}
	return words
}

// Entries returns all records in iteration order.
func (t *FrequencyTable) Entries() []WordEntry {
	if t == nil || t.m == nil {
		return []WordEntry{}
	}
	entries := make([]WordEntry, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, WordEntry{Word: pair.Key, Count: pair.Value.Count, Sentiment: pair.Value.Sentiment})
	}
	return entries
}

// Top returns at most n entries from the front of the table. n <= 0 means all.
func (t *FrequencyTable) Top(n int) []WordEntry {
	entries := t.Entries()
	if n > 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}

// Truncate keeps only the first n keys in insertion order and drops the rest.
// It does not look at counts: a frequent word inserted late is discarded.
func (t *FrequencyTable) Truncate(n int) {
	if t.Len() <= n {
		return
	}
	kept := t.Entries()[:n]
	t.rebuild(kept)
}

// SortByCount reorders the table by descending count. The sort is stable so
// equal counts keep their insertion order.
func (t *FrequencyTable) SortByCount() {
	entries := t.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	t.rebuild(entries)
}

func (t *FrequencyTable) rebuild(entries []WordEntry) {
	m := orderedmap.New[string, *WordRecord]()
	for _, e := range entries {
		m.Set(e.Word, &WordRecord{Count: e.Count, Sentiment: e.Sentiment})
	}
	t.m = m
}

// MarshalJSON implements json.Marshaler.
func (t *FrequencyTable) MarshalJSON() ([]byte, error) {
	t.ensure()
	return t.m.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *FrequencyTable) UnmarshalJSON(data []byte) error {
	t.m = orderedmap.New[string, *WordRecord]()
	return t.m.UnmarshalJSON(data)
}
