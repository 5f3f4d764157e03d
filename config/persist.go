package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/trellisdb/trellis/errors"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Deletion failure is not fatal for a config save
		fmt.Fprintf(os.Stderr, "warning: failed to delete old backup %s: %v\n", back3, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, 0644); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// Save writes the given configuration to the user config file as TOML,
// rotating backups of any existing file first.
func Save(cfg *Config) error {
	return SaveTo(cfg, DefaultPath())
}

// SaveTo writes the given configuration to a specific path as TOML.
func SaveTo(cfg *Config, configPath string) error {
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(configToMap(cfg))
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// Mark this as our own write to prevent reload loops
	globalWatcherMu.Lock()
	if globalWatcher != nil {
		globalWatcher.MarkOwnWrite()
	}
	globalWatcherMu.Unlock()

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	return nil
}

// configToMap converts a Config to the nested-map shape viper reads back.
// TOML keys stay in sync with the mapstructure tags on Config.
func configToMap(cfg *Config) map[string]interface{} {
	return map[string]interface{}{
		"database": map[string]interface{}{
			"path": cfg.Database.Path,
		},
		"import": map[string]interface{}{
			"max_depth":         cfg.Import.MaxDepth,
			"scalar_property":   cfg.Import.ScalarProperty,
			"reject_violations": cfg.Import.RejectViolations,
		},
		"logging": map[string]interface{}{
			"json":    cfg.Logging.JSON,
			"verbose": cfg.Logging.Verbose,
		},
	}
}
