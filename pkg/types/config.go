package types

import "github.com/cockroachdb/errors"

// Config locates the two input datasets.
type Config struct {
	NEOFile string `json:"neo_file" yaml:"neo_file"`
	CADFile string `json:"cad_file" yaml:"cad_file"`
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
	LogJSON bool   `json:"log_json" yaml:"log_json"`
}

// Config validation errors.
var (
	ErrNEOFileEmpty = errors.New("neo file must not be empty")
	ErrCADFileEmpty = errors.New("close approach file must not be empty")
)

// Validate checks that both input files are set.
func (c Config) Validate() error {
	if c.NEOFile == "" {
		return ErrNEOFileEmpty
	}
	if c.CADFile == "" {
		return ErrCADFileEmpty
	}
	return nil
}
