// Package extract reads the NEO catalogue (CSV) and the JPL close-approach
// data (JSON) into unlinked entities. All input coercion happens here; the
// entity constructors only ever see typed values.
package extract

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/neo/internal/logger"
	"github.com/mesh-intelligence/neo/pkg/types"
)

// CADTimeLayout is the calendar date format of the "cd" field in JPL
// close-approach data, e.g. "2020-Jan-01 12:30".
const CADTimeLayout = "2006-Jan-02 15:04"

// NEO catalogue columns.
const (
	colDesignation = "pdes"
	colName        = "name"
	colDiameter    = "diameter"
	colHazardous   = "pha"
)

// Close-approach fields.
const (
	fieldDesignation = "des"
	fieldTime        = "cd"
	fieldDistance    = "dist"
	fieldVelocity    = "v_rel"
)

// LoadNEOFile opens path and reads it with LoadNEOs.
func LoadNEOFile(path string) ([]*types.NearEarthObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open neo file")
	}
	defer f.Close()

	neos, err := LoadNEOs(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	logger.Logger.Infow("loaded neos", "path", path, "count", len(neos))
	return neos, nil
}

// LoadNEOs reads a CSV catalogue with a header row. Columns are located by
// name, so extra columns and any column order are accepted.
func LoadNEOs(r io.Reader) ([]*types.NearEarthObject, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	idx, err := columnIndex(header, colDesignation, colName, colDiameter, colHazardous)
	if err != nil {
		return nil, err
	}

	var neos []*types.NearEarthObject
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		diameter, err := parseOptionalFloat(colDiameter, record[idx[colDiameter]])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		neo, err := types.NewNearEarthObject(
			record[idx[colDesignation]],
			record[idx[colName]],
			diameter,
			record[idx[colHazardous]] == "Y",
		)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		neos = append(neos, neo)
	}
	return neos, nil
}

// cadDocument is the subset of the JPL SBDB close-approach API response
// that the loader needs.
type cadDocument struct {
	Fields []string `json:"fields"`
	Data   [][]any  `json:"data"`
}

// LoadApproachFile opens path and reads it with LoadApproaches.
func LoadApproachFile(path string) ([]*types.CloseApproach, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open close approach file")
	}
	defer f.Close()

	approaches, err := LoadApproaches(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	logger.Logger.Infow("loaded close approaches", "path", path, "count", len(approaches))
	return approaches, nil
}

// LoadApproaches reads a JPL close-approach JSON document. Fields are located
// through the "fields" list rather than fixed positions.
func LoadApproaches(r io.Reader) ([]*types.CloseApproach, error) {
	var doc cadDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode close approach json")
	}
	idx, err := columnIndex(doc.Fields, fieldDesignation, fieldTime, fieldDistance, fieldVelocity)
	if err != nil {
		return nil, err
	}

	approaches := make([]*types.CloseApproach, 0, len(doc.Data))
	for i, row := range doc.Data {
		ca, err := approachFromRow(row, idx)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		approaches = append(approaches, ca)
	}
	return approaches, nil
}

func approachFromRow(row []any, idx map[string]int) (*types.CloseApproach, error) {
	des, err := cell(row, idx, fieldDesignation)
	if err != nil {
		return nil, err
	}
	rawTime, err := cell(row, idx, fieldTime)
	if err != nil {
		return nil, err
	}
	when, err := ParseCADTime(rawTime)
	if err != nil {
		return nil, err
	}
	rawDist, err := cell(row, idx, fieldDistance)
	if err != nil {
		return nil, err
	}
	dist, err := parseFloat(fieldDistance, rawDist)
	if err != nil {
		return nil, err
	}
	rawVel, err := cell(row, idx, fieldVelocity)
	if err != nil {
		return nil, err
	}
	vel, err := parseFloat(fieldVelocity, rawVel)
	if err != nil {
		return nil, err
	}
	return types.NewCloseApproach(des, when, dist, vel)
}

// ParseCADTime parses a JPL calendar date such as "2020-Jan-01 12:30" as UTC.
func ParseCADTime(s string) (time.Time, error) {
	t, err := time.Parse(CADTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, types.Malformed(fieldTime, s)
	}
	return t, nil
}

// FormatCADTime renders t in the JPL calendar date format.
func FormatCADTime(t time.Time) string {
	return t.UTC().Format(CADTimeLayout)
}

func columnIndex(header []string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	out := make(map[string]int, len(names))
	for _, name := range names {
		i, ok := idx[name]
		if !ok {
			return nil, errors.Wrapf(types.ErrMissingField, "%q", name)
		}
		out[name] = i
	}
	return out, nil
}

// cell returns the string value of a named field. JSON numbers are accepted
// as well as strings; null and missing cells are malformed.
func cell(row []any, idx map[string]int, name string) (string, error) {
	i := idx[name]
	if i >= len(row) {
		return "", errors.Wrapf(types.ErrMissingField, "%q", name)
	}
	switch v := row[i].(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return "", types.Malformed(name, "null")
	}
}

func parseFloat(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		return 0, types.Malformed(field, raw)
	}
	return v, nil
}

// parseOptionalFloat maps an empty cell to NaN.
func parseOptionalFloat(field, raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return math.NaN(), nil
	}
	return parseFloat(field, raw)
}
