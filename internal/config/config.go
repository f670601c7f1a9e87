package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/blockcull/pkg/blockpos"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds the culling run configuration.
type Config struct {
	Source      string `json:"source" yaml:"source"`       // "generator" or "region"
	Generator   string `json:"generator" yaml:"generator"` // "hills" or "flat"
	Seed        int64  `json:"seed" yaml:"seed"`
	CenterX     int    `json:"center_x" yaml:"center_x"` // chunk coordinates
	CenterZ     int    `json:"center_z" yaml:"center_z"`
	Radius      int    `json:"radius" yaml:"radius"` // in chunks
	Workers     int    `json:"workers" yaml:"workers"`
	RegionDir   string `json:"region_dir" yaml:"region_dir"`
	FetchURL    string `json:"fetch_url" yaml:"fetch_url"` // go-getter source, downloaded into RegionDir
	DataDir     string `json:"data_dir" yaml:"data_dir"`   // block overrides live here
	ReportPath  string `json:"report_path" yaml:"report_path"`
	ExportDir   string `json:"export_dir" yaml:"export_dir"`
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`
	LogLevel    string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Source:    "generator",
		Generator: "hills",
		Radius:    2,
		Workers:   4,
		RegionDir: "region",
		LogLevel:  "info",
	}
}

// Load reads a config file on top of DefaultConfig. YAML is used for
// .yaml/.yml files, JSON for everything else.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto decodes a config file onto cfg. Keys absent from the file leave
// the corresponding fields of cfg untouched, so files can be layered.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["source"] {
		cfg.Source = fromFile.Source
	}
	if !explicitFlags["generator"] {
		cfg.Generator = fromFile.Generator
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["x"] {
		cfg.CenterX = fromFile.CenterX
	}
	if !explicitFlags["z"] {
		cfg.CenterZ = fromFile.CenterZ
	}
	if !explicitFlags["radius"] {
		cfg.Radius = fromFile.Radius
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["region-dir"] {
		cfg.RegionDir = fromFile.RegionDir
	}
	if !explicitFlags["fetch"] {
		cfg.FetchURL = fromFile.FetchURL
	}
	if !explicitFlags["data-dir"] {
		cfg.DataDir = fromFile.DataDir
	}
	if !explicitFlags["report"] {
		cfg.ReportPath = fromFile.ReportPath
	}
	if !explicitFlags["export-dir"] {
		cfg.ExportDir = fromFile.ExportDir
	}
	if !explicitFlags["metrics-addr"] {
		cfg.MetricsAddr = fromFile.MetricsAddr
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
}

// Validate checks field values and cross-field constraints.
func (c *Config) Validate() error {
	switch c.Source {
	case "generator":
		switch c.Generator {
		case "hills", "flat":
		default:
			return errors.Wrapf(ErrInvalid, "unknown generator %q", c.Generator)
		}
	case "region":
		if c.RegionDir == "" {
			return errors.Wrap(ErrInvalid, "region source needs a region dir")
		}
	default:
		return errors.Wrapf(ErrInvalid, "unknown source %q", c.Source)
	}

	if c.FetchURL != "" && c.RegionDir == "" {
		return errors.Wrap(ErrInvalid, "fetch needs a region dir to download into")
	}
	if c.Radius < 0 {
		return errors.Wrapf(ErrInvalid, "negative radius %d", c.Radius)
	}
	if c.Workers < 1 {
		return errors.Wrapf(ErrInvalid, "workers must be at least 1, got %d", c.Workers)
	}

	// Every chunk in the run must have at least one block column inside the
	// coordinate domain.
	const maxChunk = blockpos.XMax >> 4
	for _, v := range []int{c.CenterX - c.Radius, c.CenterX + c.Radius, c.CenterZ - c.Radius, c.CenterZ + c.Radius} {
		if v < -maxChunk-1 || v > maxChunk {
			return errors.Wrapf(ErrInvalid, "chunk %d outside the world", v)
		}
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, errors.Wrapf(ErrInvalid, "log level %q", c.LogLevel)
	}
	return lvl, nil
}
