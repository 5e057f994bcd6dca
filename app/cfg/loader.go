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
	// File locations
	ConfigFile string `long:"config-file" env:"CONFIG_FILE" default:"config.yml" description:"Path to newsletter YAML configuration file"`
	DBPath     string `long:"db-path" env:"DB_PATH" default:"yomu.db" description:"Path to SQLite database file"`
	SpoolDir   string `long:"spool-dir" env:"SPOOL_DIR" default:"./spool" description:"Directory for delivered newsletter digests"`

	// Operational HTTP server
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port for health and stats endpoints"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Yomu/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"" description:"Timezone for schedule evaluation (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	// Run modes
	InitDB         bool     `long:"init-db" description:"Initialize database tables and exit"`
	ClearAllCache  bool     `long:"clear-all-cache" description:"Clear all cached extraction state and exit"`
	ClearCacheKeys []string `long:"clear-cache-key" description:"Clear cached extraction state for a specific source (repeatable)"`
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
		ConfigFile:     raw.ConfigFile,
		DBPath:         raw.DBPath,
		SpoolDir:       raw.SpoolDir,
		Port:           raw.Port,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
		InitDB:         raw.InitDB,
		ClearAllCache:  raw.ClearAllCache,
		ClearCacheKeys: raw.ClearCacheKeys,
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
