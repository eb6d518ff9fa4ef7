package write

import (
	"bufio"
	"context"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/neo/internal/logger"
	"github.com/mesh-intelligence/neo/pkg/types"
)

// Format is an output file format.
type Format string

// Supported output formats.
const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatJSONL  Format = "jsonl"
	FormatSQLite Format = "sqlite"
)

// Meta describes the query that produced a result set. Only the SQLite
// format records it.
type Meta struct {
	Criteria string
	Limit    int
}

// FormatFor picks the output format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonl":
		return FormatJSONL, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", errors.Wrapf(types.ErrUnsupportedFormat, "%q (want .csv, .json, .jsonl, .db or .sqlite)", path)
	}
}

// ToFile writes results to path in the format chosen by its extension and
// returns the number of results written. The file is replaced atomically: a
// failed write leaves any previous file untouched.
func ToFile(ctx context.Context, path string, results iter.Seq[*types.CloseApproach], meta Meta) (int, error) {
	format, err := FormatFor(path)
	if err != nil {
		return 0, err
	}

	var n int
	switch format {
	case FormatSQLite:
		n, err = SQLite(ctx, path, results, meta)
	default:
		err = atomicWrite(path, func(w io.Writer) error {
			var werr error
			switch format {
			case FormatCSV:
				n, werr = CSV(w, results)
			case FormatJSON:
				n, werr = JSON(w, results)
			case FormatJSONL:
				n, werr = JSONL(w, results)
			}
			return werr
		})
	}
	if err != nil {
		return n, err
	}

	logger.Logger.Infow("wrote results", "path", path, "format", string(format), "count", n)
	return n, nil
}

// atomicWrite writes to a temp file in the target directory, fsyncs it, and
// renames it over path.
func atomicWrite(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	tmp, err := os.CreateTemp(dir, ".neo-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := fill(w); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "flush buffer")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
