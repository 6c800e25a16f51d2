package core

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/chatstats/core/agg"
	"github.com/huangsam/chatstats/core/profanity"
	"github.com/huangsam/chatstats/core/sentiment"
	"github.com/huangsam/chatstats/core/text"
	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/schema"
)

// Analyzer turns raw messages into a Report. It holds the language resources
// for one run and is not safe for concurrent use.
type Analyzer struct {
	filter  *text.Filter
	scorer  *sentiment.Scorer
	scanner *profanity.Scanner
	opts    agg.Options
}

// NewAnalyzer builds an Analyzer from already loaded resources.
func NewAnalyzer(filter *text.Filter, scorer *sentiment.Scorer, scanner *profanity.Scanner, opts agg.Options) *Analyzer {
	return &Analyzer{filter: filter, scorer: scorer, scanner: scanner, opts: opts}
}

// NewDefaultAnalyzer uses the embedded English resources and default options.
func NewDefaultAnalyzer() *Analyzer {
	return NewAnalyzer(text.NewDefaultFilter(), sentiment.NewDefaultScorer(), profanity.DefaultScanner(), agg.DefaultOptions())
}

// NewAnalyzerFromConfig loads the resources named in cfg, falling back to
// the embedded defaults. Any load failure is returned before a message is read.
func NewAnalyzerFromConfig(cfg *contract.Config) (*Analyzer, error) {
	stopWords := text.DefaultStopWords()
	if cfg.StopWordsFile != "" {
		var err error
		if stopWords, err = loadFile(cfg.StopWordsFile, text.LoadStopWords); err != nil {
			return nil, err
		}
	}

	contractions := text.DefaultContractions()
	if cfg.ContractionsFile != "" {
		var err error
		if contractions, err = loadFile(cfg.ContractionsFile, text.LoadContractions); err != nil {
			return nil, err
		}
	}

	scorer := sentiment.NewDefaultScorer()
	if cfg.LexiconFile != "" {
		lexicon, err := loadFile(cfg.LexiconFile, sentiment.LoadLexicon)
		if err != nil {
			return nil, err
		}
		scorer = sentiment.NewScorer(sentiment.NewAFINN(lexicon))
	}

	scanner := profanity.DefaultScanner()
	if cfg.PatternsFile != "" {
		var err error
		if scanner, err = loadFile(cfg.PatternsFile, profanity.LoadPatterns); err != nil {
			return nil, err
		}
	}

	opts := agg.Options{Width: cfg.PeriodWidth, TopN: cfg.PeriodTopN}
	if opts.Width <= 0 {
		opts.Width = agg.DefaultPeriodWidth
	}
	filter := text.NewFilter(contractions, text.WordTokenizer{}, stopWords)
	return NewAnalyzer(filter, scorer, scanner, opts), nil
}

// loadFile opens path and hands it to load.
func loadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	v, err := load(f)
	if err != nil {
		return zero, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return v, nil
}

// WithProgress returns a copy of the analyzer that reports bucket progress.
func (a *Analyzer) WithProgress(fn func(current, total int)) *Analyzer {
	clone := *a
	clone.opts.Progress = fn
	return &clone
}

// Prepare normalizes and scores every message once. Messages whose text
// filters down to nothing are kept, they still count as messages.
func (a *Analyzer) Prepare(raw []schema.RawMessage) []schema.ScoredMessage {
	scored := make([]schema.ScoredMessage, len(raw))
	for i, msg := range raw {
		norm := a.filter.NormalizeMessage(msg)
		scored[i] = schema.ScoredMessage{
			NormalizedMessage: norm,
			Sentiment:         a.scorer.Score(norm.Tokens),
			ProfanityMatches:  a.scanner.Scan(norm.Tokens),
		}
	}
	return scored
}

// BuildReport runs the global and the per-period aggregation. Every call
// starts from an empty first-time vocabulary.
func (a *Analyzer) BuildReport(scored []schema.ScoredMessage) *schema.Report {
	lex := agg.NewMemo(wordLexicon{scorer: a.scorer, scanner: a.scanner})
	report := agg.Global(scored, lex)
	report.DataPeriods = agg.Periods(scored, lex, agg.NewSeenWords(), a.opts)
	return report
}

// Analyze is Prepare followed by BuildReport.
func (a *Analyzer) Analyze(raw []schema.RawMessage) *schema.Report {
	return a.BuildReport(a.Prepare(raw))
}

// wordLexicon answers per-word questions from the scorer and the scanner.
type wordLexicon struct {
	scorer  *sentiment.Scorer
	scanner *profanity.Scanner
}

func (l wordLexicon) ScoreWord(word string) float64 { return l.scorer.ScoreWord(word) }

// IsProfane classifies a word by the patterns it matches.
func (l wordLexicon) IsProfane(word string) bool { return len(l.scanner.ScanWord(word)) > 0 }
