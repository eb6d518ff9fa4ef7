package write

import (
	"encoding/csv"
	"io"
	"iter"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/neo/pkg/types"
)

// unknownDiameter is written in the diameter_km column when the diameter is
// not known.
const unknownDiameter = "nan"

// csvBool renders potentially_hazardous the way existing consumers of this
// CSV layout expect.
func csvBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// CSV writes a header row followed by one row per result and returns the
// number of rows written, not counting the header.
func CSV(w io.Writer, results iter.Seq[*types.CloseApproach]) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, errors.Wrap(err, "write csv header")
	}

	n := 0
	row := make([]string, len(Header))
	for ca := range results {
		row[0] = ca.TimeString()
		row[1] = formatFloat(ca.Distance)
		row[2] = formatFloat(ca.Velocity)
		row[3] = ca.NEO.Designation
		row[4] = ca.NEO.Name
		row[5] = unknownDiameter
		if ca.NEO.HasDiameter() {
			row[5] = formatFloat(ca.NEO.Diameter)
		}
		row[6] = csvBool(ca.NEO.Hazardous)
		if err := cw.Write(row); err != nil {
			return n, errors.Wrapf(err, "write csv row %d", n+1)
		}
		n++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, errors.Wrap(err, "flush csv")
	}
	return n, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
