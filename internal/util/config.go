package util

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Configuration carries everything the binary needs beyond the program file
// itself. Build metadata is injected at link time; the rest comes from an
// optional TOML file overridden by flags.
type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	// Snapshot persistence.
	SnapshotDriver string `toml:"snapshot_driver"`
	SnapshotDSN    string `toml:"snapshot_dsn"`
}

// LoadConfiguration reads a TOML config file into a Configuration. An empty
// path returns the zero configuration; a missing file at an explicit path is
// an error.
func LoadConfiguration(path string) (Configuration, error) {
	var config Configuration
	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); err != nil {
		return config, fmt.Errorf("config file: %w", err)
	}
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return config, fmt.Errorf("config file %s: %w", path, err)
	}
	return config, nil
}
