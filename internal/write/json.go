package write

import (
	"bufio"
	"encoding/json"
	"io"
	"iter"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/neo/pkg/types"
)

// JSON writes results as an indented JSON array. Elements are encoded as
// they are pulled, so the full result set is never held in memory.
func JSON(w io.Writer, results iter.Seq[*types.CloseApproach]) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("["); err != nil {
		return 0, errors.Wrap(err, "write json")
	}

	n := 0
	for ca := range results {
		data, err := json.MarshalIndent(NewRecord(ca), "  ", "  ")
		if err != nil {
			return n, errors.Wrapf(err, "marshal record %d", n+1)
		}
		sep := "\n  "
		if n > 0 {
			sep = ",\n  "
		}
		if _, err := bw.WriteString(sep); err != nil {
			return n, errors.Wrap(err, "write json")
		}
		if _, err := bw.Write(data); err != nil {
			return n, errors.Wrap(err, "write json")
		}
		n++
	}

	closing := "]\n"
	if n > 0 {
		closing = "\n]\n"
	}
	if _, err := bw.WriteString(closing); err != nil {
		return n, errors.Wrap(err, "write json")
	}
	if err := bw.Flush(); err != nil {
		return n, errors.Wrap(err, "flush json")
	}
	return n, nil
}

// JSONL writes one compact JSON record per line.
func JSONL(w io.Writer, results iter.Seq[*types.CloseApproach]) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	n := 0
	for ca := range results {
		if err := enc.Encode(NewRecord(ca)); err != nil {
			return n, errors.Wrapf(err, "encode record %d", n+1)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, errors.Wrap(err, "flush jsonl")
	}
	return n, nil
}
