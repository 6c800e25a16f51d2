// Package core has core logic for turning chat archives into reports.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/chatstats/internal/archive"
	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/internal/outwriter"
	"github.com/huangsam/chatstats/schema"
	"github.com/sirupsen/logrus"
)

// ExecutorFunc defines the function signature for executing different report modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteReport builds the full report and writes it in the configured format.
// It serves as the main entry point for the 'report' mode.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := GetReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReport(report, cfg, time.Since(start))
}

// ExecutePeriods builds the report and writes only the period table.
func ExecutePeriods(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := GetReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePeriods(report.DataPeriods, cfg, time.Since(start))
}

// ExecuteWords builds the report and writes the top words of the global
// word or profanity table, depending on cfg.Kind.
func ExecuteWords(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := GetReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	entries := TopWords(report, cfg.Kind, cfg.ResultLimit)
	return outwriter.NewOutWriter().WriteWords(entries, cfg, time.Since(start))
}

// GetReport opens the configured archive and returns its report, going
// through the report cache and run history when they are configured.
func GetReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.Report, error) {
	src, err := archive.NewSource(cfg.ArchivePath)
	if err != nil {
		return nil, err
	}
	return runReportCore(ctx, cfg, src, mgr)
}

// TopWords returns at most limit entries of the selected global table.
func TopWords(report *schema.Report, kind schema.FrequencyKind, limit int) []schema.WordEntry {
	table := report.WordFrequency
	if kind == schema.ProfanityKind {
		table = report.ProfanityFrequency
	}
	return table.Top(limit)
}

// runReportCore performs run tracking around the cached report build.
func runReportCore(ctx context.Context, cfg *contract.Config, src contract.MessageSource, mgr contract.CacheManager) (*schema.Report, error) {
	contract.Logger().WithFields(logrus.Fields{
		"archive":    src.Name(),
		"period":     cfg.PeriodWidth.String(),
		"period_top": cfg.PeriodTopN,
	}).Info("Building report")

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	history := mgr.GetHistoryStore()
	if history != nil {
		var err error
		runID, err = history.BeginRun(time.Now(), src.Name(), runParams(cfg))
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
			runID = 0
		}
	}

	// --- 1. Report (with caching) ---
	report, err := cachedBuildReport(ctx, cfg, src, mgr)
	if err != nil {
		return nil, err
	}

	// --- 2. End Run Tracking ---
	if history != nil && runID > 0 {
		recordRun(history, runID, report)
	}

	return report, nil
}

// recordRun stores every bucket and closes the run. Failures are logged and
// never fail the report.
func recordRun(history contract.HistoryStore, runID int64, report *schema.Report) {
	for _, bucket := range report.DataPeriods {
		if err := history.RecordPeriod(runID, bucket); err != nil {
			contract.LogWarn("Failed to record period snapshot", err)
			break
		}
	}
	if err := history.EndRun(runID, time.Now(), report.TotalMessages, len(report.DataPeriods)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// runParams is the configuration stored with each run.
func runParams(cfg *contract.Config) map[string]any {
	params := map[string]any{
		"period":     cfg.PeriodWidth.String(),
		"period_top": cfg.PeriodTopN,
	}
	if !cfg.StartTime.IsZero() {
		params["start"] = cfg.StartTime.Format(contract.DateTimeFormat)
	}
	if !cfg.EndTime.IsZero() {
		params["end"] = cfg.EndTime.Format(contract.DateTimeFormat)
	}
	for key, path := range map[string]string{
		"lexicon_file":      cfg.LexiconFile,
		"patterns_file":     cfg.PatternsFile,
		"stopwords_file":    cfg.StopWordsFile,
		"contractions_file": cfg.ContractionsFile,
	} {
		if path != "" {
			params[key] = path
		}
	}
	return params
}

// buildReport reads, filters and analyzes the archive.
func buildReport(ctx context.Context, cfg *contract.Config, src contract.MessageSource) (*schema.Report, error) {
	analyzer, err := NewAnalyzerFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	raw, err := src.ReadMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.Name(), err)
	}
	raw = filterWindow(cfg, raw)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !shouldSuppressProgress(ctx) {
		analyzer = analyzer.WithProgress(contract.LogProgress)
	}
	return analyzer.Analyze(raw), nil
}

// filterWindow keeps messages inside the configured time range.
func filterWindow(cfg *contract.Config, raw []schema.RawMessage) []schema.RawMessage {
	if cfg.StartTime.IsZero() && cfg.EndTime.IsZero() {
		return raw
	}
	kept := make([]schema.RawMessage, 0, len(raw))
	for _, msg := range raw {
		if cfg.InWindow(msg.Timestamp) {
			kept = append(kept, msg)
		}
	}
	return kept
}
