package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/chatstats/schema"
	"github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 2
	DefaultPeriod      = "30 days"
	DefaultPeriodTop   = 50
	MaxPeriodTop       = 10000
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a report.
// This struct remains the "final, validated" config.
type Config struct {
	ArchivePath string
	StartTime   time.Time // zero = no lower bound
	EndTime     time.Time // zero = no upper bound
	PeriodWidth time.Duration
	PeriodTopN  int
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	Kind        schema.FrequencyKind

	// Optional replacements for the embedded language resources
	LexiconFile      string
	PatternsFile     string
	StopWordsFile    string
	ContractionsFile string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	LogLevel  logrus.Level
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ArchivePathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile       string `mapstructure:"output-file"`
	Limit            int    `mapstructure:"limit"`
	Start            string `mapstructure:"start"`
	End              string `mapstructure:"end"`
	Period           string `mapstructure:"period"`
	PeriodTop        int    `mapstructure:"period-top"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	Width            int    `mapstructure:"width"`
	LexiconFile      string `mapstructure:"lexicon-file"`
	PatternsFile     string `mapstructure:"patterns-file"`
	StopWordsFile    string `mapstructure:"stopwords-file"`
	ContractionsFile string `mapstructure:"contractions-file"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`

	// --- Fields from wordsCmd.Flags() ---
	Profanity bool `mapstructure:"profanity"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithTimeWindow creates a copy of the Config and sets the new StartTime and EndTime.
func (c *Config) CloneWithTimeWindow(start time.Time, end time.Time) *Config {
	clone := c.Clone()
	clone.StartTime = start
	clone.EndTime = end
	return clone
}

// InWindow reports whether t falls inside the configured time range.
// Both bounds are inclusive and a zero bound is open.
func (c *Config) InWindow(t time.Time) bool {
	if !c.StartTime.IsZero() && t.Before(c.StartTime) {
		return false
	}
	if !c.EndTime.IsZero() && t.After(c.EndTime) {
		return false
	}
	return true
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processPeriod(cfg, input); err != nil {
		return err
	}
	if err := validateResourceFiles(cfg, input); err != nil {
		return err
	}
	return resolveArchivePath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath && cacheDBPath != ":memory:" {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	level, err := ParseLogLevel(input.LogLevel)
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	cfg.Kind = schema.WordKind
	if input.Profanity {
		cfg.Kind = schema.ProfanityKind
	}

	return validateBackendConfigs(cfg, input)
}

// processTimeRange handles the date parsing and time range validation.
// An unset bound stays zero and means "unbounded".
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	cfg.StartTime = time.Time{}
	cfg.EndTime = time.Time{}

	parse := func(label, s string) (time.Time, error) {
		if t, err := time.Parse(DateTimeFormat, s); err == nil {
			return t, nil
		}
		t, err := ParseTimeAgo(s, now)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid %s date format for '%s'. Expected absolute ISO8601 or 'N [units] ago'", label, s)
		}
		return t, nil
	}

	if input.Start != "" {
		t, err := parse("start", input.Start)
		if err != nil {
			return err
		}
		cfg.StartTime = t
	}
	if input.End != "" {
		t, err := parse("end", input.End)
		if err != nil {
			return err
		}
		cfg.EndTime = t
	}

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}
	return nil
}

// processPeriod handles the bucket width and the per-bucket table bound.
func processPeriod(cfg *Config, input *ConfigRawInput) error {
	period := input.Period
	if strings.TrimSpace(period) == "" {
		period = DefaultPeriod
	}
	width, err := ParsePeriodWidth(period)
	if err != nil {
		return fmt.Errorf("invalid period: %w", err)
	}
	cfg.PeriodWidth = width

	if input.PeriodTop < 0 || input.PeriodTop > MaxPeriodTop {
		return fmt.Errorf("period-top must be between 0 and %d (received %d)", MaxPeriodTop, input.PeriodTop)
	}
	cfg.PeriodTopN = input.PeriodTop
	return nil
}

// validateResourceFiles makes sure every override file exists before any work starts.
func validateResourceFiles(cfg *Config, input *ConfigRawInput) error {
	files := []struct {
		flag string
		src  string
		dst  *string
	}{
		{"lexicon-file", input.LexiconFile, &cfg.LexiconFile},
		{"patterns-file", input.PatternsFile, &cfg.PatternsFile},
		{"stopwords-file", input.StopWordsFile, &cfg.StopWordsFile},
		{"contractions-file", input.ContractionsFile, &cfg.ContractionsFile},
	}
	for _, f := range files {
		*f.dst = ""
		if f.src == "" {
			continue
		}
		info, err := os.Stat(f.src)
		if err != nil {
			return fmt.Errorf("--%s: %w", f.flag, err)
		}
		if info.IsDir() {
			return fmt.Errorf("--%s must be a file, got directory %s", f.flag, f.src)
		}
		*f.dst = f.src
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveArchivePath turns the positional argument into an absolute path to
// an existing .zip file or directory.
func resolveArchivePath(cfg *Config, input *ConfigRawInput) error {
	if input.ArchivePathStr == "" {
		return fmt.Errorf("an archive path is required")
	}
	absPath, err := filepath.Abs(input.ArchivePathStr)
	if err != nil {
		return err
	}
	absPath = filepath.Clean(absPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("archive %s: %w", input.ArchivePathStr, err)
	}
	if !info.IsDir() && !strings.EqualFold(filepath.Ext(absPath), ".zip") {
		return fmt.Errorf("archive %s must be a .zip file or a directory", input.ArchivePathStr)
	}

	cfg.ArchivePath = absPath
	return nil
}

// ReportOverrides are per-request changes to an already validated Config.
// Zero fields keep the current value.
type ReportOverrides struct {
	ArchivePath string
	Start       string
	End         string
	Period      string
	PeriodTop   int
	Limit       int
}

// ApplyOverrides validates o and applies it to cfg. Setting either window
// bound replaces both, so an omitted bound becomes open.
func ApplyOverrides(cfg *Config, o ReportOverrides) error {
	if o.ArchivePath != "" {
		if err := resolveArchivePath(cfg, &ConfigRawInput{ArchivePathStr: o.ArchivePath}); err != nil {
			return err
		}
	}
	if o.Start != "" || o.End != "" {
		if err := processTimeRange(cfg, &ConfigRawInput{Start: o.Start, End: o.End}); err != nil {
			return err
		}
	}
	if o.Period != "" || o.PeriodTop != 0 {
		input := &ConfigRawInput{Period: o.Period, PeriodTop: cfg.PeriodTopN}
		if o.Period == "" {
			input.Period = cfg.PeriodWidth.String()
		}
		if o.PeriodTop != 0 {
			input.PeriodTop = o.PeriodTop
		}
		if err := processPeriod(cfg, input); err != nil {
			return err
		}
	}
	if o.Limit != 0 {
		if o.Limit < 0 || o.Limit > MaxResultLimit {
			return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, o.Limit)
		}
		cfg.ResultLimit = o.Limit
	}
	return nil
}
