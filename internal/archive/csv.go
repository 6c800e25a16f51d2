package archive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/chatstats/schema"
)

// Column names of a channel's messages.csv.
const (
	ColumnID          = "ID"
	ColumnTimestamp   = "Timestamp"
	ColumnContents    = "Contents"
	ColumnAttachments = "Attachments"
)

// timestampLayouts are tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// ParseStats describes what ParseChannel skipped.
type ParseStats struct {
	Rows          int
	EmptyContents int
	BadTimestamps int
}

// ParseTimestamp parses a message timestamp using the known export layouts.
// Layouts without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseChannel reads one messages.csv. Rows with empty Contents and rows with
// an unparsable Timestamp are skipped and counted in the returned stats.
// Only a missing header column or broken CSV quoting is an error.
func ParseChannel(r io.Reader, channel string) ([]schema.RawMessage, ParseStats, error) {
	var stats ParseStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []schema.RawMessage{}, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	tsCol, ok := columns[ColumnTimestamp]
	if !ok {
		return nil, stats, fmt.Errorf("missing %s column", ColumnTimestamp)
	}
	textCol, ok := columns[ColumnContents]
	if !ok {
		return nil, stats, fmt.Errorf("missing %s column", ColumnContents)
	}

	messages := []schema.RawMessage{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		// short rows are padded with empty fields
		if textCol >= len(record) || record[textCol] == "" {
			stats.EmptyContents++
			continue
		}
		if tsCol >= len(record) {
			stats.BadTimestamps++
			continue
		}
		ts, err := ParseTimestamp(record[tsCol])
		if err != nil {
			stats.BadTimestamps++
			continue
		}
		messages = append(messages, schema.RawMessage{
			Timestamp: ts,
			Text:      record[textCol],
			Channel:   channel,
		})
	}
	return messages, stats, nil
}
