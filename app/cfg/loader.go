package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Input / output paths
	FeedsFile string `long:"feeds" env:"FEEDS_FILE" default:"./feeds.yml" description:"YAML file listing the feeds to aggregate"`
	DataDir   string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory holding the item snapshot and HTTP validator cache"`

	// Ingestion settings
	WorkerCount   int `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of concurrent feed fetch workers"`
	RetentionDays int `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Items older than this many days are pruned"`
	FetchTimeout  int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Per-request fetch timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Planet Ruby/1.0 (+https://planetruby.live)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		FeedsFile:     raw.FeedsFile,
		DataDir:       raw.DataDir,
		WorkerCount:   raw.WorkerCount,
		RetentionDays: raw.RetentionDays,
		FetchTimeout:  raw.FetchTimeout,
		UserAgent:     raw.UserAgent,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// applyTimezone sets the zone log timestamps render in. Persisted data
// stays UTC regardless.
func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
