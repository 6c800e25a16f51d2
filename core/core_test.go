package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/chatstats/internal/archive"
	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/internal/iocache"
	"github.com/huangsam/chatstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubSource serves fixed messages.
type stubSource struct {
	name      string
	digest    string
	digestErr error
	msgs      []schema.RawMessage
	readErr   error
	reads     int
}

var _ contract.MessageSource = (*stubSource)(nil)

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Digest() (string, error) { return s.digest, s.digestErr }

func (s *stubSource) ReadMessages(ctx context.Context) ([]schema.RawMessage, error) {
	s.reads++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.msgs, s.readErr
}

func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetHistoryStore").Return(nil)
	return mgr
}

func TestRunReportCore(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	cfg := &contract.Config{PeriodWidth: 30 * day, PeriodTopN: 50}

	report, err := runReportCore(ctx, cfg, &stubSource{name: "stub", msgs: scenarioMessages()}, noStores())
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalMessages)
	assert.Len(t, report.DataPeriods, 2)
}

func TestRunReportCoreReadError(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	cfg := &contract.Config{}

	_, err := runReportCore(ctx, cfg, &stubSource{name: "stub", readErr: archive.ErrNoMessages}, noStores())
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrNoMessages)
}

func TestRunReportCoreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(WithSuppressProgress(context.Background()))
	cancel()

	_, err := runReportCore(ctx, &contract.Config{}, &stubSource{name: "stub", msgs: scenarioMessages()}, noStores())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReportCoreRecordsHistory(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	cfg := &contract.Config{PeriodWidth: 30 * day, PeriodTopN: 50, StartTime: epoch}

	history := &iocache.MockHistoryStore{}
	history.On("BeginRun", mock.AnythingOfType("time.Time"), "stub", mock.MatchedBy(func(params map[string]any) bool {
		return params["period"] == "720h0m0s" && params["period_top"] == 50 && params["start"] != nil
	})).Return(int64(7), nil)
	history.On("RecordPeriod", int64(7), mock.AnythingOfType("schema.PeriodBucket")).Return(nil).Times(2)
	history.On("EndRun", int64(7), mock.AnythingOfType("time.Time"), 3, 2).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	_, err := runReportCore(ctx, cfg, &stubSource{name: "stub", msgs: scenarioMessages()}, mgr)
	require.NoError(t, err)
	history.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestRunReportCoreHistoryFailures(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	cfg := &contract.Config{PeriodWidth: 30 * day}

	t.Run("begin fails", func(t *testing.T) {
		history := &iocache.MockHistoryStore{}
		history.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("locked"))
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetReportStore").Return(nil)
		mgr.On("GetHistoryStore").Return(history)

		report, err := runReportCore(ctx, cfg, &stubSource{name: "stub", msgs: scenarioMessages()}, mgr)
		require.NoError(t, err)
		assert.Equal(t, 3, report.TotalMessages)
		history.AssertNotCalled(t, "RecordPeriod", mock.Anything, mock.Anything)
		history.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("record fails", func(t *testing.T) {
		history := &iocache.MockHistoryStore{}
		history.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
		history.On("RecordPeriod", int64(1), mock.Anything).Return(errors.New("constraint")).Once()
		history.On("EndRun", int64(1), mock.Anything, 3, 2).Return(nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetReportStore").Return(nil)
		mgr.On("GetHistoryStore").Return(history)

		_, err := runReportCore(ctx, cfg, &stubSource{name: "stub", msgs: scenarioMessages()}, mgr)
		require.NoError(t, err)
		history.AssertExpectations(t)
	})
}

func TestFilterWindow(t *testing.T) {
	msgs := scenarioMessages()

	t.Run("unbounded", func(t *testing.T) {
		assert.Len(t, filterWindow(&contract.Config{}, msgs), 3)
	})

	t.Run("start only", func(t *testing.T) {
		cfg := &contract.Config{StartTime: epoch.Add(day)}
		kept := filterWindow(cfg, msgs)
		require.Len(t, kept, 2)
		assert.Equal(t, "I hate pizza", kept[0].Text)
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		cfg := &contract.Config{StartTime: epoch, EndTime: epoch.Add(29 * day)}
		kept := filterWindow(cfg, msgs)
		assert.Len(t, kept, 2)
	})

	t.Run("window excludes everything", func(t *testing.T) {
		cfg := &contract.Config{StartTime: epoch.Add(100 * day)}
		assert.Empty(t, filterWindow(cfg, msgs))
	})
}

func TestWindowedEmptyReport(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	cfg := &contract.Config{StartTime: epoch.Add(100 * day)}

	report, err := runReportCore(ctx, cfg, &stubSource{name: "stub", msgs: scenarioMessages()}, noStores())
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalMessages)
	assert.Empty(t, report.DataPeriods)
	assert.True(t, report.AverageSentiment.IsNoData())
}

func TestTopWords(t *testing.T) {
	report := NewDefaultAnalyzer().Analyze([]schema.RawMessage{
		rawAt(0, "pizza pizza shit"),
		rawAt(day, "shit movie"),
	})

	words := TopWords(report, schema.WordKind, 1)
	require.Len(t, words, 1)
	assert.Contains(t, []string{"pizza", "shit"}, words[0].Word)

	profane := TopWords(report, schema.ProfanityKind, 10)
	require.Len(t, profane, 1)
	assert.Equal(t, "shit", profane[0].Word)
	assert.Equal(t, 2, profane[0].Count)
}

func TestRunParams(t *testing.T) {
	params := runParams(&contract.Config{PeriodWidth: 7 * day, PeriodTopN: 10, PatternsFile: "/p.json"})
	assert.Equal(t, "168h0m0s", params["period"])
	assert.Equal(t, 10, params["period_top"])
	assert.Equal(t, "/p.json", params["patterns_file"])
	assert.NotContains(t, params, "start")
	assert.NotContains(t, params, "lexicon_file")
}

// writeArchive lays out an unpacked export with two channels.
func writeArchive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	channels := map[string]string{
		"c1": "ID,Timestamp,Contents,Attachments\n" +
			"1,2021-03-01 09:00:00,I love pizza,\n" +
			"2,2021-03-30 09:00:00,pizza is good,\n",
		"c2": "ID,Timestamp,Contents,Attachments\n" +
			"3,2021-04-01 09:00:00,I hate pizza,\n" +
			"4,2021-04-01 10:00:00,,photo.png\n",
	}
	for name, content := range channels {
		dir := filepath.Join(root, "messages", name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "messages.csv"), []byte(content), 0o644))
	}
	return root
}

func TestGetReportFromDirectory(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	cfg := &contract.Config{ArchivePath: writeArchive(t), PeriodWidth: 30 * day, PeriodTopN: 50}

	report, err := GetReport(ctx, cfg, noStores())
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalMessages)
	assert.Equal(t, 4, report.TotalUniqueWords)
	assert.Len(t, report.DataPeriods, 2)
}

func TestGetReportMissingArchive(t *testing.T) {
	cfg := &contract.Config{ArchivePath: filepath.Join(t.TempDir(), "missing.zip")}
	_, err := GetReport(context.Background(), cfg, noStores())
	assert.Error(t, err)
}

func TestExecuteReportJSON(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	out := filepath.Join(t.TempDir(), "stats.json")
	cfg := &contract.Config{
		ArchivePath: writeArchive(t),
		PeriodWidth: 30 * day,
		PeriodTopN:  50,
		ResultLimit: 10,
		Precision:   2,
		Output:      schema.JSONOut,
		OutputFile:  out,
	}

	require.NoError(t, ExecuteReport(ctx, cfg, noStores()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded schema.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 3, decoded.TotalMessages)
	assert.Len(t, decoded.DataPeriods, 2)
}

func TestExecuteWordsCSV(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	out := filepath.Join(t.TempDir(), "words.csv")
	cfg := &contract.Config{
		ArchivePath: writeArchive(t),
		PeriodWidth: 30 * day,
		ResultLimit: 2,
		Precision:   2,
		Output:      schema.CSVOut,
		OutputFile:  out,
		Kind:        schema.WordKind,
	}

	require.NoError(t, ExecuteWords(ctx, cfg, noStores()))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rank,word,count,sentiment")
	assert.Contains(t, string(data), "1,pizza,3,0.00")
}

func TestExecutePeriodsText(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	out := filepath.Join(t.TempDir(), "periods.txt")
	cfg := &contract.Config{
		ArchivePath: writeArchive(t),
		PeriodWidth: 30 * day,
		PeriodTopN:  50,
		ResultLimit: 10,
		Precision:   2,
		Width:       120,
		Output:      schema.TextOut,
		OutputFile:  out,
	}

	require.NoError(t, ExecutePeriods(ctx, cfg, noStores()))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2021-03-01")
	assert.Contains(t, string(data), "pizza")
}
