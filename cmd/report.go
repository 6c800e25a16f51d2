package cmd

import (
	"github.com/huangsam/chatstats/core"
	"github.com/huangsam/chatstats/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd prints the whole report.
var reportCmd = &cobra.Command{
	Use:   "report <archive>",
	Short: "Show totals, period buckets, and top words of a chat archive.",
	Long: `Read every channel of a chat export and print the full report.

The archive is either the exported .zip file or the directory it unpacks to.
Every messages/<channel>/messages.csv is read; rows with an unparsable
timestamp are skipped with a warning.

The report holds:
- Totals and per-message averages for the whole archive
- One bucket per period with its own word and profanity tables
- The most frequent words with their sentiment

Examples:
  # Full report as tables
  chatstats report package.zip

  # Full report as JSON, weekly buckets
  chatstats report package.zip --period "1 week" --output json --output-file stats.json

  # Only the last year
  chatstats report ./package --start "1 year ago"`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build report", err)
		}
	},
}

// periodsCmd prints the period table only.
var periodsCmd = &cobra.Command{
	Use:   "periods <archive>",
	Short: "Show per-period activity and sentiment of a chat archive.",
	Long: `Split the archive into fixed-width periods starting at the oldest message
and print one row per period.

A message exactly on a period boundary is counted in both neighbouring
periods. Periods without messages are kept and show "no data" averages.

Examples:
  # Monthly periods (default width is 30 days)
  chatstats periods package.zip

  # Two-week periods as CSV
  chatstats periods package.zip --period "2 weeks" --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePeriods(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build periods", err)
		}
	},
}

// wordsCmd prints the top words or profanity matches.
var wordsCmd = &cobra.Command{
	Use:   "words <archive>",
	Short: "Show the most frequent words of a chat archive.",
	Long: `Print the most frequent words of the whole archive with their sentiment.

Stop words are removed and contractions are expanded before counting.
With --profanity the listing shows matched profanity instead.

Examples:
  # Top 25 words
  chatstats words package.zip

  # Top 10 profanity matches
  chatstats words package.zip --profanity --limit 10`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWords(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list words", err)
		}
	},
}
