package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/schema"
)

// Table names for run history.
const (
	runsTable    = "chatstats_report_runs"
	periodsTable = "chatstats_period_snapshots"
)

// periodColumns lists the snapshot columns in insert and select order.
const periodColumns = `run_id, period_index, start_date, end_date, total_messages, total_words,
	total_unique_words, total_first_time_words, total_profanity,
	average_words_per_message, average_sentiment, average_profanity_per_message, top_word`

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the run history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{periodsTable, getCreatePeriodsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for chatstats_report_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_messages INT NOT NULL DEFAULT 0,
				total_periods INT NOT NULL DEFAULT 0,
				archive_path TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_messages INT NOT NULL DEFAULT 0,
				total_periods INT NOT NULL DEFAULT 0,
				archive_path TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_messages INTEGER NOT NULL DEFAULT 0,
				total_periods INTEGER NOT NULL DEFAULT 0,
				archive_path TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreatePeriodsQuery returns the CREATE TABLE query for chatstats_period_snapshots.
func getCreatePeriodsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(periodsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				period_index INT NOT NULL,
				start_date DATETIME(6) NOT NULL,
				end_date DATETIME(6) NOT NULL,
				total_messages INT NOT NULL,
				total_words INT NOT NULL,
				total_unique_words INT NOT NULL,
				total_first_time_words INT NOT NULL,
				total_profanity INT NOT NULL,
				average_words_per_message DOUBLE,
				average_sentiment DOUBLE,
				average_profanity_per_message DOUBLE,
				top_word VARCHAR(255),
				PRIMARY KEY (run_id, period_index)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				period_index INT NOT NULL,
				start_date TIMESTAMPTZ NOT NULL,
				end_date TIMESTAMPTZ NOT NULL,
				total_messages INT NOT NULL,
				total_words INT NOT NULL,
				total_unique_words INT NOT NULL,
				total_first_time_words INT NOT NULL,
				total_profanity INT NOT NULL,
				average_words_per_message DOUBLE PRECISION,
				average_sentiment DOUBLE PRECISION,
				average_profanity_per_message DOUBLE PRECISION,
				top_word TEXT,
				PRIMARY KEY (run_id, period_index)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				period_index INTEGER NOT NULL,
				start_date TEXT NOT NULL,
				end_date TEXT NOT NULL,
				total_messages INTEGER NOT NULL,
				total_words INTEGER NOT NULL,
				total_unique_words INTEGER NOT NULL,
				total_first_time_words INTEGER NOT NULL,
				total_profanity INTEGER NOT NULL,
				average_words_per_message REAL,
				average_sentiment REAL,
				average_profanity_per_message REAL,
				top_word TEXT,
				PRIMARY KEY (run_id, period_index)
			);
		`, quotedTableName)
	}
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, archivePath string, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, archive_path, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, startTime, archivePath, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, archive_path, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), archivePath, string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert report run: %w", err)
	}

	return runID, nil
}

// RecordPeriod stores one period snapshot of a run.
func (hs *HistoryStoreImpl) RecordPeriod(runID int64, bucket schema.PeriodBucket) error {
	if hs.disabled() {
		return nil
	}

	rec := schema.NewPeriodRecord(runID, bucket)
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(periodsTable, hs.backend), periodColumns, placeholderList(hs.backend, 13))

	var topWord any
	if rec.TopWord != nil {
		topWord = *rec.TopWord
	}

	_, err := hs.db.Exec(query,
		rec.RunID, rec.PeriodIndex,
		formatTime(rec.StartDate, hs.backend), formatTime(rec.EndDate, hs.backend),
		rec.TotalMessages, rec.TotalWords, rec.TotalUniqueWords, rec.TotalFirstTimeWords, rec.TotalProfanity,
		nullFloat(rec.AverageWordsPerMessage), nullFloat(rec.AverageSentiment), nullFloat(rec.AverageProfanityPerMessage),
		topWord,
	)
	if err != nil {
		return fmt.Errorf("failed to insert period %d of run %d: %w", rec.PeriodIndex, runID, err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalMessages, totalPeriods int) error {
	if hs.disabled() {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(runsTable, hs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(hs.backend, 1))
	row := hs.db.QueryRow(query, runID)

	var startTime time.Time
	switch hs.backend {
	case schema.SQLiteBackend:
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		var err error
		if startTime, err = parseTime(startTimeStr); err != nil {
			return fmt.Errorf("failed to parse start_time: %w", err)
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&startTime); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_messages = %s, total_periods = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(hs.backend, 1), placeholder(hs.backend, 2), placeholder(hs.backend, 3),
		placeholder(hs.backend, 4), placeholder(hs.backend, 5))
	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalMessages, totalPeriods, runID); err != nil {
		return fmt.Errorf("failed to update report run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var err error
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if status.LastRunID, status.LastRunTime, err = hs.scanIDAndTime(row); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		row = hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns))
		if _, status.OldestRunTime, err = hs.scanIDAndTime(row); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		messagesQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_messages), 0) FROM %s", quotedRuns)
		if err := hs.db.QueryRow(messagesQuery).Scan(&status.TotalMessagesSeen); err != nil {
			return status, fmt.Errorf("failed to get total messages: %w", err)
		}
	}

	for _, table := range []string{runsTable, periodsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// scanIDAndTime reads a (run_id, start_time) row for any backend.
func (hs *HistoryStoreImpl) scanIDAndTime(row *sql.Row) (int64, time.Time, error) {
	var id int64
	if hs.backend == schema.SQLiteBackend {
		var ts string
		if err := row.Scan(&id, &ts); err != nil {
			return 0, time.Time{}, err
		}
		t, err := parseTime(ts)
		return id, t, err
	}
	var t time.Time
	err := row.Scan(&id, &t)
	return id, t, err
}

// GetAllRuns retrieves all report runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_messages, total_periods, archive_path, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs,
				&record.TotalMessages, &record.TotalPeriods, &record.ArchivePath, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan report run: %w", err)
			}
			if record.StartTime, err = parseTime(startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := parseTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.TotalMessages, &record.TotalPeriods, &record.ArchivePath, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan report run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}
	return results, nil
}

// GetAllPeriods retrieves every stored period snapshot.
func (hs *HistoryStoreImpl) GetAllPeriods() ([]schema.PeriodRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY run_id, period_index`, periodColumns, quoteTableName(periodsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query period snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PeriodRecord
	for rows.Next() {
		var rec schema.PeriodRecord
		var start, end any = &rec.StartDate, &rec.EndDate
		var startStr, endStr string
		if hs.backend == schema.SQLiteBackend {
			start, end = &startStr, &endStr
		}

		if err := rows.Scan(&rec.RunID, &rec.PeriodIndex, start, end,
			&rec.TotalMessages, &rec.TotalWords, &rec.TotalUniqueWords, &rec.TotalFirstTimeWords, &rec.TotalProfanity,
			&rec.AverageWordsPerMessage, &rec.AverageSentiment, &rec.AverageProfanityPerMessage, &rec.TopWord); err != nil {
			return nil, fmt.Errorf("failed to scan period snapshot: %w", err)
		}

		if hs.backend == schema.SQLiteBackend {
			if rec.StartDate, err = parseTime(startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_date: %w", err)
			}
			if rec.EndDate, err = parseTime(endStr); err != nil {
				return nil, fmt.Errorf("failed to parse end_date: %w", err)
			}
		}

		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period snapshots: %w", err)
	}
	return results, nil
}
