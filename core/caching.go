package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/schema"
)

// currentCacheVersion defines the version of the cached report encoding
const currentCacheVersion = 1

// cacheMaxAge is how long a cached report stays usable.
const cacheMaxAge = 7 * 24 * time.Hour

// cachedBuildReport returns a stored report for the same archive content and
// analysis settings, or builds and stores a new one.
func cachedBuildReport(ctx context.Context, cfg *contract.Config, src contract.MessageSource, mgr contract.CacheManager) (*schema.Report, error) {
	store := mgr.GetReportStore()
	if store == nil {
		return buildReport(ctx, cfg, src)
	}

	key, err := generateCacheKey(cfg, src)
	if err != nil {
		contract.LogWarn("Skipping report cache", err)
		return buildReport(ctx, cfg, src)
	}

	if report := checkCacheHit(store, key); report != nil {
		contract.Logger().WithField("archive", src.Name()).Debug("Report cache hit")
		return report, nil
	}

	return computeAndStore(ctx, cfg, src, store, key)
}

// checkCacheHit attempts to retrieve and validate a cached report
func checkCacheHit(store contract.CacheStore, key string) *schema.Report {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheMaxAge {
		return nil // Stale or version mismatch
	}

	var report schema.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil
	}
	return &report
}

// computeAndStore builds the report and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, src contract.MessageSource, store contract.CacheStore, key string) (*schema.Report, error) {
	report, err := buildReport(ctx, cfg, src)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(report)
	if err == nil {
		err = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	if err != nil {
		contract.LogWarn("Failed to cache report", err)
	}
	return report, nil
}

// generateCacheKey hashes the archive content together with every setting
// that changes the report.
func generateCacheKey(cfg *contract.Config, src contract.MessageSource) (string, error) {
	digest, err := src.Digest()
	if err != nil {
		return "", fmt.Errorf("failed to digest archive: %w", err)
	}

	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s:%d:%d:%d:%d\n",
		digest,
		cfg.StartTime.Unix(),
		cfg.EndTime.Unix(),
		int64(cfg.PeriodWidth),
		cfg.PeriodTopN,
	)
	for _, path := range []string{cfg.LexiconFile, cfg.PatternsFile, cfg.StopWordsFile, cfg.ContractionsFile} {
		if err := hashResource(h, path); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// hashResource mixes the content of an override file into h. Unset files
// contribute a fixed marker.
func hashResource(h io.Writer, path string) error {
	if path == "" {
		_, _ = io.WriteString(h, "-\n")
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	_, _ = io.WriteString(h, "\n")
	return nil
}
