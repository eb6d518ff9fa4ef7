// Package paths resolves the configuration directory, the data directory,
// and the two input dataset files.
//
// Precedence everywhere is: command-line flag, then config.yaml, then the
// NEO_* environment variable, then a default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Default names. The data directory defaults to ./data, the layout the NASA
// dataset downloads ship with.
const (
	AppName            = "neo"
	DefaultDataDirName = "data"
	DefaultNEOFile     = "neos.csv"
	DefaultCADFile     = "cad.json"
)

// Environment variable names for overrides.
const (
	EnvConfigDir = "NEO_CONFIG_DIR"
	EnvDataDir   = "NEO_DATA_DIR"
)

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/neo (fallback ~/.config/neo)
// macOS:   ~/Library/Application Support/neo
// Windows: %APPDATA%/neo
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// ResolveConfigDir returns the configuration directory: flag >
// NEO_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory: flag > config.yaml value >
// NEO_DATA_DIR > $(CWD)/data.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveInputFile returns an input dataset path: flag > config.yaml value >
// dataDir/defaultName. Relative config values are taken relative to dataDir.
func ResolveInputFile(flag, configValue, dataDir, defaultName string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		if filepath.IsAbs(configValue) {
			return configValue, nil
		}
		return filepath.Join(dataDir, configValue), nil
	}
	return filepath.Join(dataDir, defaultName), nil
}
