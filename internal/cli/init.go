package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/neo/internal/paths"
	"github.com/mesh-intelligence/neo/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and data directories",
		Long: "Create the configuration directory with a config.yaml and the data directory\n" +
			"that holds neos.csv and cad.json. Existing files are left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return errors.Wrap(err, "resolve config dir")
	}
	configPath := filepath.Join(configDir, configFileExt)

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, loadDataDirFromConfig(configPath))
	if err != nil {
		return errors.Wrap(err, "resolve data dir")
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return errors.Wrap(err, "create data directory")
	}

	cfg := types.Config{
		NEOFile: paths.DefaultNEOFile,
		CADFile: paths.DefaultCADFile,
		DataDir: dataDir,
		LogJSON: a.flags.logJSON,
	}
	if a.flags.neoFile != "" {
		cfg.NEOFile = a.flags.neoFile
	}
	if a.flags.cadFile != "" {
		cfg.CADFile = a.flags.cadFile
	}
	if err := writeConfigIfMissing(configPath, cfg); err != nil {
		return errors.Wrap(err, "write config")
	}

	out := cmd.OutOrStdout()
	pterm.Fprintln(out, pterm.Green("neo initialized"))
	pterm.Fprintln(out, "config: "+configPath)
	pterm.Fprintln(out, "data:   "+dataDir)
	for _, name := range []string{cfg.NEOFile, cfg.CADFile} {
		path, _ := paths.ResolveInputFile("", name, dataDir, name)
		if _, err := os.Stat(path); err != nil {
			pterm.Fprintln(out, pterm.Yellow(fmt.Sprintf("missing dataset: %s", path)))
		}
	}
	return nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. An existing file is left as is.
func writeConfigIfMissing(path string, cfg types.Config) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return os.WriteFile(path, data, 0o644)
}

// loadDataDirFromConfig reads data_dir from an existing config.yaml, or
// returns "" if the file is absent or unreadable.
func loadDataDirFromConfig(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var cfg types.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ""
	}
	return cfg.DataDir
}
