package cli

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyNEOFile = "neo_file"
	cfgKeyCADFile = "cad_file"
	cfgKeyDataDir = "data_dir"
	cfgKeyLogJSON = "log_json"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# neo configuration

# Data directory holding the datasets (optional; overridable by --data-dir)
# data_dir:

# Dataset files; relative paths are taken relative to data_dir
neo_file: neos.csv
cad_file: cad.json

# Write logs as JSON
log_json: false
`

// loadConfig reads config.yaml from configDir with Viper, creating the
// directory and a default config.yaml on first run. A missing config.yaml
// is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, errors.Wrap(err, "ensure config dir")
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, errors.Wrap(err, "ensure default config")
	}

	v := viper.New()
	v.SetDefault(cfgKeyLogJSON, false)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, errors.Wrap(err, "read config")
	}
	return v, nil
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes defaultConfigYAML unless config.yaml exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.Wrap(err, "stat config file")
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
