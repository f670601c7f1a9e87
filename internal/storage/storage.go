package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/OCharnyshevich/blockcull/internal/config"
	"github.com/OCharnyshevich/blockcull/internal/world"
	"github.com/OCharnyshevich/blockcull/pkg/blockpos"
)

// configNames are tried in order by LoadConfig.
var configNames = []string{"config.yaml", "config.yml", "config.json"}

// Storage handles file-based persistence for config and world overrides.
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a new Storage rooted at dir, creating it if needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create directory %s", dir)
	}
	return &Storage{dir: dir, log: log}, nil
}

// LoadConfig decodes the first config file found in the storage directory
// onto cfg. If there is none, cfg is unchanged.
func (s *Storage) LoadConfig(cfg *config.Config) error {
	for _, name := range configNames {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrap(err, "stat config")
		}
		if err := config.LoadInto(path, cfg); err != nil {
			return err
		}
		s.log.Info("loaded config from file", "path", path)
		return nil
	}
	return nil
}

// LoadWorld reads overrides.json and bulk-loads block overrides into the world.
func (s *Storage) LoadWorld(w *world.World) error {
	path := filepath.Join(s.dir, "world", "overrides.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "read world overrides")
	}

	var wd WorldData
	if err := json.Unmarshal(data, &wd); err != nil {
		return errors.Wrap(err, "parse world overrides")
	}

	overrides := make(map[blockpos.BlockPos]uint16, len(wd.Overrides))
	for _, o := range wd.Overrides {
		p, err := blockpos.New(o.X, o.Y, o.Z)
		if err != nil {
			return errors.Wrapf(err, "override at (%d, %d, %d)", o.X, o.Y, o.Z)
		}
		overrides[p] = o.State
	}

	w.LoadOverrides(overrides)
	s.log.Info("loaded world overrides", "count", len(overrides))
	return nil
}

// SaveWorld writes all block overrides to overrides.json atomically.
func (s *Storage) SaveWorld(w *world.World) error {
	path := filepath.Join(s.dir, "world", "overrides.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create world directory")
	}
	return atomicWriteJSON(path, WorldDataFromWorld(w))
}

// SaveReport writes report to path atomically. Relative paths are resolved
// against the storage directory.
func (s *Storage) SaveReport(path string, report any) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create report directory")
	}
	if err := atomicWriteJSON(path, report); err != nil {
		return err
	}
	s.log.Info("saved report", "path", path)
	return nil
}

// atomicWriteJSON marshals v to JSON and writes it atomically using a temp file + rename.
func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal json")
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
