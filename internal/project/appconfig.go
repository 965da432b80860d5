package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/BlockPack/internal/model"
)

// ConfigDirEnv overrides the configuration directory when set.
const ConfigDirEnv = "BLOCKPACK_HOME"

// DefaultConfigDir returns the directory holding configuration, custom
// profiles and run history: $BLOCKPACK_HOME, or ~/.blockpack.
func DefaultConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".blockpack")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// DefaultHistoryPath returns the default SQLite run history database.
func DefaultHistoryPath() string {
	return filepath.Join(DefaultConfigDir(), "history.db")
}

// SaveAppConfig writes config to path as indented JSON, creating parent
// directories.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from path. A missing file yields the
// defaults. Fields absent from the file keep their default values.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return model.AppConfig{}, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, model.WrapError(model.ErrCodeInvalidConfig, err, "failed to parse %s", path)
	}
	if config.RecentProblems == nil {
		config.RecentProblems = []string{}
	}
	return config, nil
}
