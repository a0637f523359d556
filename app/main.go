package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/peterc/planetruby/app/cfg"
	"github.com/peterc/planetruby/app/config"
	"github.com/peterc/planetruby/app/feed"
	"github.com/peterc/planetruby/app/fetcher"
	"github.com/peterc/planetruby/app/ingest"
	"github.com/peterc/planetruby/app/store"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting ingestion run", "version", appCfg.Version)

	feeds, err := config.Load(appCfg.FeedsFile)
	if err != nil {
		slog.Error("Failed to load feed list", "file", appCfg.FeedsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Feed list loaded", "file", appCfg.FeedsFile, "feeds", len(feeds))

	snapshotPath := filepath.Join(appCfg.DataDir, "items.json")
	cachePath := filepath.Join(appCfg.DataDir, "http_cache.json")

	existing, err := store.LoadSnapshot(snapshotPath)
	if err != nil {
		// A corrupt snapshot must not be silently replaced with a
		// fresh crawl; bail out and leave the file for inspection.
		slog.Error("Failed to load snapshot", "file", snapshotPath, "error", err)
		os.Exit(1)
	}

	cache, err := store.LoadValidatorCache(cachePath)
	if err != nil {
		// Losing validators only costs one unconditional refetch per
		// feed, so a corrupt cache degrades to an empty one.
		slog.Warn("Discarding unreadable validator cache", "file", cachePath, "error", err)
	}

	// One cutoff for the whole run, shared by parse-time filtering and
	// merge-time pruning, so the two stages can't disagree at the boundary.
	cutoff := time.Now().UTC().AddDate(0, 0, -appCfg.RetentionDays)

	client := fetcher.NewClient(appCfg.UserAgent, time.Duration(appCfg.FetchTimeout)*time.Second)
	coordinator := ingest.NewCoordinator(client, feed.NewParser(), appCfg.WorkerCount, cutoff)

	report := coordinator.Run(context.Background(), feeds, cache)

	merged := store.Merge(existing, report.Items, cutoff)

	if err := store.SaveSnapshot(snapshotPath, merged); err != nil {
		slog.Error("Failed to save snapshot", "file", snapshotPath, "error", err)
		os.Exit(1)
	}
	if err := report.Cache.Save(cachePath); err != nil {
		slog.Error("Failed to save validator cache", "file", cachePath, "error", err)
		os.Exit(1)
	}

	slog.Info("Ingestion run complete",
		"ok", report.OKCount,
		"not_modified", report.NotModifiedCount,
		"errors", report.ErrorCount,
		"fresh_items", len(report.Items),
		"stored_items", len(merged))
}
