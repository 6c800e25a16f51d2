// Package schema has the shared data types for ingestion, analysis and reporting.
package schema

import "time"

// RawMessage is a single chat message as read from an archive.
type RawMessage struct {
	Timestamp time.Time
	Text      string
	Channel   string // provenance only, never used by aggregation
}

// NormalizedMessage is a message after text filtering.
// Tokens are lowercase, contraction-expanded, stop-word-free, longer than
// one character and never contain "http".
type NormalizedMessage struct {
	Timestamp time.Time
	Tokens    []string
}

// ScoredMessage carries the per-message metrics that both aggregators share.
type ScoredMessage struct {
	NormalizedMessage
	Sentiment        float64 // NaN already coerced to 0
	ProfanityMatches int     // number of distinct patterns matching the message
}

// HasProfanity reports whether at least one profanity pattern matched.
func (m ScoredMessage) HasProfanity() bool {
	return m.ProfanityMatches > 0
}
