// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/chatstats/schema"
)

// MessageSource yields the raw messages of one chat archive.
// This allows the analysis pipeline to be tested without real archive files.
type MessageSource interface {
	// Name returns a human-readable identifier such as the archive path.
	Name() string

	// Digest returns a content hash of the archive, used as part of cache keys.
	Digest() (string, error)

	// ReadMessages loads every message with non-empty text. Records with
	// unparsable timestamps are skipped.
	ReadMessages(ctx context.Context) ([]schema.RawMessage, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetReportStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking report runs and their period snapshots.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, archivePath string, configParams map[string]any) (int64, error)

	// RecordPeriod stores one period snapshot of a run
	RecordPeriod(runID int64, bucket schema.PeriodBucket) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalMessages, totalPeriods int) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every stored run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllPeriods returns every stored period snapshot ordered by run and index
	GetAllPeriods() ([]schema.PeriodRecord, error)

	// Close closes the underlying connection
	Close() error
}
