// Package cli implements the neo command-line interface.
package cli

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/neo/internal/database"
	"github.com/mesh-intelligence/neo/internal/extract"
	"github.com/mesh-intelligence/neo/internal/logger"
	"github.com/mesh-intelligence/neo/internal/paths"
	"github.com/mesh-intelligence/neo/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks errors caused by bad flags or arguments.
var errUsage = errors.New("usage error")

func usageErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), errUsage)
}

// rootFlags holds global flag values.
type rootFlags struct {
	configDir string
	dataDir   string
	neoFile   string
	cadFile   string
	logJSON   bool
	debug     bool
}

// app is the state shared by subcommands: the resolved configuration and
// the database, loaded on first use and reused afterwards.
type app struct {
	flags rootFlags
	cfg   types.Config
	db    *database.Database
}

// NewRootCmd creates the top-level "neo" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "neo",
		Short: "Explore near-Earth objects and their close approaches",
		Long: "neo links NASA's near-Earth object catalog with JPL close-approach data\n" +
			"and answers lookups and filtered queries over the linked records.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// version and init run without config.yaml.
			switch cmd.Name() {
			case "version", "init":
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.neoFile, "neofile", "", "NEO catalog CSV (default: <data-dir>/neos.csv)")
	pf.StringVar(&a.flags.cadFile, "cadfile", "", "close-approach JSON (default: <data-dir>/cad.json)")
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/data)")
	pf.BoolVar(&a.flags.logJSON, "log-json", false, "write logs as JSON")
	pf.BoolVar(&a.flags.debug, "debug", false, "enable debug logging")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Mark(err, errUsage)
	})

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newShellCmd(a))
	root.AddCommand(newServeCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to a process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errUsage),
		errors.Is(err, types.ErrInvalidCriterion),
		errors.Is(err, types.ErrUnsupportedFormat),
		strings.HasPrefix(err.Error(), "unknown command"):
		return exitUserError
	default:
		return exitSysError
	}
}

// setup resolves directories and input files, reads config.yaml, and
// initializes logging.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return errors.Wrap(err, "resolve config dir")
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return errors.Wrap(err, "resolve data dir")
	}
	neoFile, err := paths.ResolveInputFile(a.flags.neoFile, v.GetString(cfgKeyNEOFile), dataDir, paths.DefaultNEOFile)
	if err != nil {
		return errors.Wrap(err, "resolve neo file")
	}
	cadFile, err := paths.ResolveInputFile(a.flags.cadFile, v.GetString(cfgKeyCADFile), dataDir, paths.DefaultCADFile)
	if err != nil {
		return errors.Wrap(err, "resolve cad file")
	}

	a.cfg = types.Config{
		NEOFile: neoFile,
		CADFile: cadFile,
		DataDir: dataDir,
		LogJSON: a.flags.logJSON || v.GetBool(cfgKeyLogJSON),
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Initialize(a.cfg.LogJSON, a.flags.debug); err != nil {
		return errors.Wrap(err, "initialize logger")
	}
	logger.Logger.Debugw("resolved config",
		"config_dir", configDir,
		"neo_file", a.cfg.NEOFile,
		"cad_file", a.cfg.CADFile,
	)
	return nil
}

// database loads and links the datasets on first call.
func (a *app) database() (*database.Database, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := loadDatabase(a.cfg)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// loadDatabase reads both datasets and links them into a new database.
func loadDatabase(cfg types.Config) (*database.Database, error) {
	neos, err := extract.LoadNEOFile(cfg.NEOFile)
	if err != nil {
		return nil, errors.Wrap(err, "load neos")
	}
	approaches, err := extract.LoadApproachFile(cfg.CADFile)
	if err != nil {
		return nil, errors.Wrap(err, "load close approaches")
	}
	db, err := database.New(neos, approaches)
	if err != nil {
		return nil, errors.Wrap(err, "link database")
	}
	return db, nil
}
