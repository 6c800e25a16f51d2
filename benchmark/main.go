// Package main provides a performance benchmarking tool for the chatstats CLI.
// It generates synthetic chat exports of increasing size, times each command
// without a cache and then with a SQLite cache (first run cold, the rest warm),
// and writes a CSV summary for performance analysis and documentation.
//
// Prerequisites:
// - chatstats binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic archives are generated
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Archive     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Channels    int
	Sizes       map[string]int // archive name -> messages per channel
	Commands    map[string][]string
}

// vocabulary feeds the synthetic messages. It mixes neutral, positive and
// negative words so every pipeline stage has work to do.
var vocabulary = strings.Fields(`pizza movie game tonight weekend work meeting lunch coffee
music love great awesome happy good fun hate bad terrible sad annoying damn crap
I you we they it's don't can't won't the a is are was be to of and`)

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Channels:    8,
		Sizes: map[string]int{
			"small":  1_000,
			"medium": 10_000,
			"large":  100_000,
		},
		Commands: map[string][]string{
			"report":  {"report", "--output", "json"},
			"periods": {"periods", "--period", "1 week"},
			"words":   {"words", "--limit", "50"},
		},
	}

	if _, err := exec.LookPath("chatstats"); err != nil {
		fmt.Printf("Prerequisites check failed: chatstats binary not found in PATH\n")
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("chatstats", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// generateArchive writes an unpacked export with perChannel rows in each channel.
func generateArchive(dir string, channels, perChannel int) error {
	rng := rand.New(rand.NewPCG(42, uint64(perChannel)))
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	for c := range channels {
		channelDir := filepath.Join(dir, "messages", fmt.Sprintf("c%d", c))
		if err := os.MkdirAll(channelDir, 0o755); err != nil {
			return err
		}
		file, err := os.Create(filepath.Join(channelDir, "messages.csv"))
		if err != nil {
			return err
		}

		w := csv.NewWriter(file)
		_ = w.Write([]string{"ID", "Timestamp", "Contents", "Attachments"})
		for i := range perChannel {
			ts := start.Add(time.Duration(rng.Int64N(int64(3 * 365 * 24 * time.Hour))))
			words := make([]string, 3+rng.IntN(12))
			for j := range words {
				words[j] = vocabulary[rng.IntN(len(vocabulary))]
			}
			_ = w.Write([]string{fmt.Sprint(i), ts.Format("2006-01-02 15:04:05"), strings.Join(words, " "), ""})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

// runBenchmarks executes all benchmark tests across generated archives
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d archives, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Sizes), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, name := range []string{"small", "medium", "large"} {
		archive := filepath.Join(config.WorkDir, name)
		if _, err := os.Stat(archive); os.IsNotExist(err) {
			fmt.Printf("Generating %s archive (%d x %d messages)\n", name, config.Channels, config.Sizes[name])
			if err := generateArchive(archive, config.Channels, config.Sizes[name]); err != nil {
				return nil, fmt.Errorf("failed to generate %s archive: %w", name, err)
			}
		}

		for _, command := range []string{"report", "periods", "words"} {
			results = append(results, runBenchmarkSuite(config, name, archive, command))
		}
	}

	return results, nil
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, name, archive, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, archive, command, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Archive:     name,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a chatstats command multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, archive, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, config.Commands[command]...)
	args = append(args, archive, "--cache-backend", cacheBackend)

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "chatstats", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output, command) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	if command == "report" {
		// JSON output carries no footer
		return strings.Contains(string(output), `"totalMessages"`)
	}
	return strings.Contains(string(output), "Report completed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("chatstats_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"archive", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Archive, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"report", "periods", "words"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Archive, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
