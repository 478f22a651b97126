package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"modeltrack/internal/common/fsutil"
)

// Config holds runtime parameters for the tracker.
// Load overlays a partial config file onto Default() field by field, so a
// file only needs the keys it wants to change.
type Config struct {
	Addr    string `json:"addr" yaml:"addr" toml:"addr"`
	DataDir string `json:"data_dir" yaml:"data_dir" toml:"data_dir"`

	ScrapeIntervalHours int             `json:"scrape_interval_hours" yaml:"scrape_interval_hours" toml:"scrape_interval_hours"`
	MaxModelsPerSource  int             `json:"max_models_per_source" yaml:"max_models_per_source" toml:"max_models_per_source"`
	VRAMLimitGB         float64         `json:"vram_limit_gb" yaml:"vram_limit_gb" toml:"vram_limit_gb"`
	IncludeChinese      *bool           `json:"include_chinese" yaml:"include_chinese" toml:"include_chinese"`
	Sources             map[string]bool `json:"sources" yaml:"sources" toml:"sources"`

	ExtractorPath       string `json:"extractor_path" yaml:"extractor_path" toml:"extractor_path"`
	ExtractorTimeoutSec int    `json:"extractor_timeout_sec" yaml:"extractor_timeout_sec" toml:"extractor_timeout_sec"`
}

// Default returns the built-in configuration.
func Default() Config {
	inclChinese := true
	return Config{
		Addr:                ":8080",
		DataDir:             "data",
		ScrapeIntervalHours: 6,
		MaxModelsPerSource:  100,
		VRAMLimitGB:         24,
		IncludeChinese:      &inclChinese,
		Sources: map[string]bool{
			"huggingface": true,
			"modelscope":  true,
		},
		ExtractorPath:       "gguf-parser",
		ExtractorTimeoutSec: 60,
	}
}

// SourceEnabled reports whether a connector is enabled. Sources not listed
// in the config default to enabled.
func (c Config) SourceEnabled(name string) bool {
	if c.Sources == nil {
		return true
	}
	enabled, ok := c.Sources[name]
	return !ok || enabled
}

// ScrapeInterval returns the batch cadence as a duration.
func (c Config) ScrapeInterval() time.Duration {
	return time.Duration(c.ScrapeIntervalHours) * time.Hour
}

// ExtractorTimeout returns the per-invocation extractor wall-clock limit.
func (c Config) ExtractorTimeout() time.Duration {
	return time.Duration(c.ExtractorTimeoutSec) * time.Second
}

// DatabasePath is the SQLite file inside the data directory.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "models.db")
}

// Load reads a configuration file based on its extension and merges it over
// Default(). A missing file yields the defaults unchanged.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	expanded, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	var file Config
	switch ext := strings.ToLower(filepath.Ext(expanded)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &file); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &file); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &file); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return merge(cfg, file), nil
}

// merge overlays non-zero fields of file onto base. Explicit field-by-field
// overlay keeps the result typed instead of a dictionary merge.
func merge(base, file Config) Config {
	if file.Addr != "" {
		base.Addr = file.Addr
	}
	if file.DataDir != "" {
		base.DataDir = file.DataDir
	}
	if file.ScrapeIntervalHours > 0 {
		base.ScrapeIntervalHours = file.ScrapeIntervalHours
	}
	if file.MaxModelsPerSource > 0 {
		base.MaxModelsPerSource = file.MaxModelsPerSource
	}
	if file.VRAMLimitGB > 0 {
		base.VRAMLimitGB = file.VRAMLimitGB
	}
	if file.IncludeChinese != nil {
		base.IncludeChinese = file.IncludeChinese
	}
	for name, enabled := range file.Sources {
		base.Sources[name] = enabled
	}
	if file.ExtractorPath != "" {
		base.ExtractorPath = file.ExtractorPath
	}
	if file.ExtractorTimeoutSec > 0 {
		base.ExtractorTimeoutSec = file.ExtractorTimeoutSec
	}
	return base
}
