package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLogLevel is used when no level is configured.
const DefaultLogLevel = "info"

func init() {
	// stdout is reserved for report data and the MCP stdio transport
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})
}

// Logger returns the shared logger.
func Logger() *logrus.Logger {
	return logrus.StandardLogger()
}

// ParseLogLevel accepts any logrus level name. An empty string means DefaultLogLevel.
func ParseLogLevel(s string) (logrus.Level, error) {
	if strings.TrimSpace(s) == "" {
		s = DefaultLogLevel
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid --log-level value: %w", err)
	}
	return level, nil
}

// ConfigureLogging applies the level to the shared logger.
func ConfigureLogging(level logrus.Level) {
	logrus.SetLevel(level)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logrus.WithError(err).Fatal(msg)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	logrus.WithError(err).Warn(msg)
}

// LogProgress reports which period is being processed.
func LogProgress(current, total int) {
	logrus.Infof("Processing data period %d of %d", current, total)
}
