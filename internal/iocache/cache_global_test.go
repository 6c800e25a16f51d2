package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/chatstats/internal/parquet"
	"github.com/huangsam/chatstats/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseCaching()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite cache and history", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath))
		assert.NotNil(t, Manager.GetReportStore())
		assert.NotNil(t, Manager.GetHistoryStore())

		CloseCaching()
		_, err := os.Stat(cachePath)
		assert.NoError(t, err, "cache file is created")
		_, err = os.Stat(historyPath)
		assert.NoError(t, err, "history file is created")
	})

	t.Run("history disabled", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(schema.SQLiteBackend, ":memory:", "", ""))
		assert.NotNil(t, Manager.GetReportStore())
		assert.Nil(t, Manager.GetHistoryStore())
	})

	t.Run("none backends", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))
		require.NotNil(t, Manager.GetReportStore())
		status, err := Manager.GetReportStore().GetStatus()
		require.NoError(t, err)
		assert.False(t, status.Connected)
	})

	t.Run("idempotent", func(t *testing.T) {
		resetGlobals(t)
		for range 3 {
			assert.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
		}
		CloseCaching()
		CloseCaching()
	})

	t.Run("bad history backend closes cache", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores(schema.SQLiteBackend, ":memory:", "oracle", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "history store")
		assert.Nil(t, Manager.GetReportStore())
	})

	t.Run("bad cache backend", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores("oracle", "", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report caching")
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, InitStores(schema.SQLiteBackend, ":memory:", schema.NoneBackend, ""))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, Manager.GetReportStore())
			assert.NotNil(t, Manager.GetHistoryStore())
		}()
	}
	wg.Wait()
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(reportTable, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite empty path", func(t *testing.T) {
		assert.Error(t, ClearHistory(schema.SQLiteBackend, "", ""))
	})

	t.Run("none", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, ClearHistory("oracle", "", ""))
	})
}

func TestPrintStatus(t *testing.T) {
	t.Run("cache", func(t *testing.T) {
		var buf bytes.Buffer
		PrintCacheStatus(&buf, schema.CacheStatus{
			Backend:         "sqlite",
			Connected:       true,
			TotalEntries:    2,
			LastEntryTime:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			OldestEntryTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			TableSizeBytes:  4096,
		})
		out := buf.String()
		assert.Contains(t, out, "Cache Backend: sqlite")
		assert.Contains(t, out, "Total Entries: 2")
		assert.Contains(t, out, "Last Entry: 2024-01-02 03:04:05")
		assert.Contains(t, out, "Table Size: 4096 bytes")
	})

	t.Run("cache disconnected", func(t *testing.T) {
		var buf bytes.Buffer
		PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
		assert.NotContains(t, buf.String(), "Total Entries")
	})

	t.Run("history", func(t *testing.T) {
		var buf bytes.Buffer
		PrintHistoryStatus(&buf, schema.HistoryStatus{
			Backend:           "sqlite",
			Connected:         true,
			TotalRuns:         3,
			LastRunID:         3,
			TotalMessagesSeen: 120,
			TableSizes:        map[string]int64{periodsTable: 9, runsTable: 3},
		})
		out := buf.String()
		assert.Contains(t, out, "Total Runs: 3")
		assert.Contains(t, out, "Total Messages Seen: 120")
		// tables are listed alphabetically
		assert.Less(t, bytes.Index(buf.Bytes(), []byte(periodsTable)), bytes.Index(buf.Bytes(), []byte(runsTable)))
	})
}

func TestExecuteHistoryExport(t *testing.T) {
	t.Run("writes both files", func(t *testing.T) {
		store := newTestHistoryStore(t)
		start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
		runID, err := store.BeginRun(start, "/data/package.zip", nil)
		require.NoError(t, err)
		for _, b := range testBuckets(start) {
			require.NoError(t, store.RecordPeriod(runID, b))
		}
		require.NoError(t, store.EndRun(runID, start.Add(time.Second), 2, 2))

		out := filepath.Join(t.TempDir(), "history")
		var buf bytes.Buffer
		require.NoError(t, ExecuteHistoryExport(&buf, store, out))
		assert.Contains(t, buf.String(), "Exported 1 report runs")
		assert.Contains(t, buf.String(), "Exported 2 period snapshots")

		runs, err := pq.ReadFile[parquet.ReportRun](out + ".report_runs.parquet")
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, runID, runs[0].RunID)

		periods, err := pq.ReadFile[parquet.PeriodSnapshot](out + ".period_snapshots.parquet")
		require.NoError(t, err)
		assert.Len(t, periods, 2)
	})

	t.Run("requires output file", func(t *testing.T) {
		assert.Error(t, ExecuteHistoryExport(&bytes.Buffer{}, &MockHistoryStore{}, ""))
	})

	t.Run("requires store", func(t *testing.T) {
		assert.Error(t, ExecuteHistoryExport(&bytes.Buffer{}, nil, "out"))
	})

	t.Run("empty history", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)
		err := ExecuteHistoryExport(&bytes.Buffer{}, store, filepath.Join(t.TempDir(), "out"))
		assert.ErrorContains(t, err, "no run history")
		store.AssertExpectations(t)
	})
}
