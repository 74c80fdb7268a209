// Package config loads layout-lens settings from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (LAYOUT_LENS_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .layout-lens.yaml in current directory
//  2. ~/.config/layout-lens/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all layout-lens configuration. This is the tool's own
// settings file, not the layout document it operates on.
type Config struct {
	// LayoutFile is the document checked when no path is given on the
	// command line.
	LayoutFile string `yaml:"layout_file"`

	// Output
	Format string `yaml:"format"` // "text" or "json"

	// Watch mode
	WatchDebounce string `yaml:"watch_debounce"` // Go duration string, e.g. "100ms"

	// History
	HistoryLimit int `yaml:"history_limit"` // entries shown by the history command

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	WatchDebounceDuration time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		LayoutFile:    "layout.kdl",
		Format:        "text",
		WatchDebounce: "100ms",
		HistoryLimit:  20,
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)

	var err error
	cfg.WatchDebounceDuration, err = time.ParseDuration(cfg.WatchDebounce)
	if err != nil {
		return nil, fmt.Errorf("invalid watch debounce %q: %w", cfg.WatchDebounce, err)
	}

	if cfg.Format != "text" && cfg.Format != "json" {
		return nil, fmt.Errorf("invalid format %q (want text or json)", cfg.Format)
	}

	return cfg, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".layout-lens.yaml"); err == nil {
		return ".layout-lens.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "layout-lens", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.LayoutFile != "" {
		cfg.LayoutFile = file.LayoutFile
	}
	if file.Format != "" {
		cfg.Format = file.Format
	}
	if file.WatchDebounce != "" {
		cfg.WatchDebounce = file.WatchDebounce
	}
	if file.HistoryLimit > 0 {
		cfg.HistoryLimit = file.HistoryLimit
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("LAYOUT_LENS_FILE"); v != "" {
		cfg.LayoutFile = v
	}
	if v := os.Getenv("LAYOUT_LENS_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LAYOUT_LENS_WATCH_DEBOUNCE"); v != "" {
		cfg.WatchDebounce = v
	}
	if v := os.Getenv("LAYOUT_LENS_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
}
