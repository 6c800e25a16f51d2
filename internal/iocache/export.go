package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/internal/parquet"
)

// ExecuteHistoryExport writes every stored run and period snapshot to
// <outputFile>.report_runs.parquet and <outputFile>.period_snapshots.parquet.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is not enabled. Set --history-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total period snapshots: %d\n", status.TableSizes[periodsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve report runs: %w", err)
	}
	periods, err := store.GetAllPeriods()
	if err != nil {
		return fmt.Errorf("failed to retrieve period snapshots: %w", err)
	}

	runsFile := outputFile + ".report_runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteReportRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write report runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d report runs to: %s\n", len(parquetRuns), runsFile)

	periodsFile := outputFile + ".period_snapshots.parquet"
	parquetPeriods := parquet.ConvertPeriodRecords(periods)
	if err := parquet.WritePeriodSnapshotsParquet(parquetPeriods, periodsFile); err != nil {
		return fmt.Errorf("failed to write period snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d period snapshots to: %s\n", len(parquetPeriods), periodsFile)

	return nil
}
