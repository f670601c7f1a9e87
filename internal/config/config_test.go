package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "cull.yaml", `
source: region
region_dir: /srv/world/region
center_x: -4
center_z: 9
radius: 3
workers: 8
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "region", cfg.Source)
	assert.Equal(t, "/srv/world/region", cfg.RegionDir)
	assert.Equal(t, -4, cfg.CenterX)
	assert.Equal(t, 9, cfg.CenterZ)
	assert.Equal(t, 3, cfg.Radius)
	assert.Equal(t, 8, cfg.Workers)
	// Unset keys keep their defaults.
	assert.Equal(t, "hills", cfg.Generator)
	require.NoError(t, cfg.Validate())

	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "cull.json", `{"generator": "flat", "seed": 42, "report_path": "out.json"}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "flat", cfg.Generator)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "out.json", cfg.ReportPath)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))

	_, err = Load(writeFile(t, "bad.json", `{"radius": "wide"}`))
	assert.Error(t, err)
}

func TestLoadIntoKeepsAbsentKeys(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, LoadInto(writeFile(t, "base.yaml", "radius: 5\nseed: 11\n"), cfg))
	require.NoError(t, LoadInto(writeFile(t, "top.json", `{"seed": 12}`), cfg))

	assert.Equal(t, 5, cfg.Radius, "second file does not reset radius")
	assert.Equal(t, int64(12), cfg.Seed)
	assert.Equal(t, "hills", cfg.Generator)
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Radius = 7
	cfg.Seed = 99

	fromFile := DefaultConfig()
	fromFile.Radius = 1
	fromFile.Seed = 5
	fromFile.Generator = "flat"

	Merge(cfg, fromFile, map[string]bool{"radius": true})

	assert.Equal(t, 7, cfg.Radius, "explicit flag wins")
	assert.Equal(t, int64(5), cfg.Seed, "file value applies")
	assert.Equal(t, "flat", cfg.Generator)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Source = "ftp" }},
		{"unknown generator", func(c *Config) { c.Generator = "caves" }},
		{"region without dir", func(c *Config) { c.Source = "region"; c.RegionDir = "" }},
		{"fetch without dir", func(c *Config) { c.FetchURL = "https://example.com/r.zip"; c.RegionDir = "" }},
		{"negative radius", func(c *Config) { c.Radius = -1 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"center off the world", func(c *Config) { c.CenterX = 1 << 22 }},
		{"radius off the world", func(c *Config) { c.CenterZ = -(1 << 21); c.Radius = 2 }},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}
