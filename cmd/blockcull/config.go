package main

import (
	"log/slog"

	"github.com/OCharnyshevich/blockcull/internal/config"
	"github.com/OCharnyshevich/blockcull/internal/storage"
)

// resolveConfig fills cfg from its layers, lowest precedence first:
// defaults, the data directory's config file, the file at configPath, and
// finally the flags named in explicit, which are already set on cfg. The
// data directory may itself come from configPath. It returns the storage
// for that directory, or nil when no data directory is configured.
func resolveConfig(cfg *config.Config, explicit map[string]bool, configPath string, log *slog.Logger) (*storage.Storage, error) {
	fromFile := config.DefaultConfig()
	if configPath != "" {
		if err := config.LoadInto(configPath, fromFile); err != nil {
			return nil, err
		}
	}

	dataDir := fromFile.DataDir
	if explicit["data-dir"] {
		dataDir = cfg.DataDir
	}

	var store *storage.Storage
	if dataDir != "" {
		var err error
		store, err = storage.New(dataDir, log)
		if err != nil {
			return nil, err
		}

		layered := config.DefaultConfig()
		if err := store.LoadConfig(layered); err != nil {
			return nil, err
		}
		if configPath != "" {
			if err := config.LoadInto(configPath, layered); err != nil {
				return nil, err
			}
		}
		layered.DataDir = dataDir
		fromFile = layered
	}

	config.Merge(cfg, fromFile, explicit)
	return store, nil
}
