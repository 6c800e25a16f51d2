package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/chatstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistoryStore(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*HistoryStoreImpl)
}

func testBuckets(start time.Time) []schema.PeriodBucket {
	words := schema.NewFrequencyTable()
	noScore := func(string) float64 { return 0 }
	words.Observe("pizza", noScore)
	words.Observe("pizza", noScore)
	words.Observe("movie", noScore)

	return []schema.PeriodBucket{
		{
			Index:                      0,
			StartDate:                  start,
			EndDate:                    start.Add(24 * time.Hour),
			TotalMessages:              2,
			TotalWords:                 3,
			TotalUniqueWords:           2,
			TotalFirstTimeWords:        2,
			TotalProfanity:             1,
			AverageWordsPerMessage:     1.5,
			AverageSentiment:           0.25,
			AverageProfanityPerMessage: 0.5,
			WordFrequency:              words,
			ProfanityFrequency:         schema.NewFrequencyTable(),
		},
		{
			Index:                      1,
			StartDate:                  start.Add(24 * time.Hour),
			EndDate:                    start.Add(48 * time.Hour),
			AverageWordsPerMessage:     schema.NoData,
			AverageSentiment:           schema.NoData,
			AverageProfanityPerMessage: schema.NoData,
			WordFrequency:              schema.NewFrequencyTable(),
			ProfanityFrequency:         schema.NewFrequencyTable(),
		},
	}
}

func TestHistoryStoreLifecycle(t *testing.T) {
	store := newTestHistoryStore(t)
	start := time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)

	runID, err := store.BeginRun(start, "/data/package.zip", map[string]any{"period": "24h0m0s"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), runID)

	buckets := testBuckets(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	for _, b := range buckets {
		require.NoError(t, store.RecordPeriod(runID, b))
	}
	require.NoError(t, store.EndRun(runID, start.Add(2500*time.Millisecond), 2, len(buckets)))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.True(t, run.StartTime.Equal(start))
	require.NotNil(t, run.EndTime)
	assert.True(t, run.EndTime.Equal(start.Add(2500*time.Millisecond)))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(2500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalMessages)
	assert.Equal(t, int32(2), run.TotalPeriods)
	assert.Equal(t, "/data/package.zip", run.ArchivePath)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"period":"24h0m0s"}`, *run.ConfigParams)

	periods, err := store.GetAllPeriods()
	require.NoError(t, err)
	require.Len(t, periods, 2)

	first := periods[0]
	assert.Equal(t, int32(0), first.PeriodIndex)
	assert.True(t, first.StartDate.Equal(buckets[0].StartDate))
	assert.Equal(t, int32(3), first.TotalWords)
	require.NotNil(t, first.AverageSentiment)
	assert.InDelta(t, 0.25, *first.AverageSentiment, 1e-9)
	require.NotNil(t, first.TopWord)
	assert.Equal(t, "pizza", *first.TopWord)

	empty := periods[1]
	assert.Equal(t, int32(0), empty.TotalMessages)
	assert.Nil(t, empty.AverageSentiment)
	assert.Nil(t, empty.AverageWordsPerMessage)
	assert.Nil(t, empty.AverageProfanityPerMessage)
	assert.Nil(t, empty.TopWord)
}

func TestHistoryStoreUnfinishedRun(t *testing.T) {
	store := newTestHistoryStore(t)

	_, err := store.BeginRun(time.Now(), "/tmp/archive", nil)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Equal(t, int32(0), runs[0].TotalMessages)
}

func TestHistoryStoreDuplicatePeriod(t *testing.T) {
	store := newTestHistoryStore(t)
	runID, err := store.BeginRun(time.Now(), "/tmp/archive", nil)
	require.NoError(t, err)

	bucket := testBuckets(time.Now())[0]
	require.NoError(t, store.RecordPeriod(runID, bucket))
	assert.Error(t, store.RecordPeriod(runID, bucket), "period index is part of the primary key")
}

func TestHistoryStoreEndRunUnknown(t *testing.T) {
	store := newTestHistoryStore(t)
	assert.Error(t, store.EndRun(42, time.Now(), 0, 0))
}

func TestHistoryStoreStatus(t *testing.T) {
	store := newTestHistoryStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[runsTable])

	first := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	id1, err := store.BeginRun(first, "/a", nil)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(id1, first.Add(time.Second), 10, 1))
	require.NoError(t, store.RecordPeriod(id1, testBuckets(first)[0]))
	id2, err := store.BeginRun(second, "/b", nil)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(id2, second.Add(time.Second), 5, 0))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, id2, status.LastRunID)
	assert.True(t, status.LastRunTime.Equal(second))
	assert.True(t, status.OldestRunTime.Equal(first))
	assert.Equal(t, 15, status.TotalMessagesSeen)
	assert.Equal(t, int64(2), status.TableSizes[runsTable])
	assert.Equal(t, int64(1), status.TableSizes[periodsTable])
}

func TestNoneHistoryStore(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), "/a", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.NoError(t, store.RecordPeriod(runID, testBuckets(time.Now())[0]))
	assert.NoError(t, store.EndRun(runID, time.Now(), 1, 1))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCreateHistoryQueries(t *testing.T) {
	assert.Contains(t, getCreateRunsQuery(schema.PostgreSQLBackend), "BIGSERIAL")
	assert.Contains(t, getCreateRunsQuery(schema.MySQLBackend), "AUTO_INCREMENT")
	assert.Contains(t, getCreateRunsQuery(schema.SQLiteBackend), "AUTOINCREMENT")
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		assert.Contains(t, getCreatePeriodsQuery(backend), "PRIMARY KEY (run_id, period_index)")
	}
}
