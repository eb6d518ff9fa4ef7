package filters

import (
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/neo/pkg/types"
)

// DateLayout is the YYYY-MM-DD format accepted for date criteria.
const DateLayout = "2006-01-02"

// Criteria holds the user-specified query criteria. A nil field means the
// criterion was not given. Hazardous distinguishes "not given" (nil) from
// "given as false".
type Criteria struct {
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time

	DistanceMin *float64
	DistanceMax *float64
	VelocityMin *float64
	VelocityMax *float64
	DiameterMin *float64
	DiameterMax *float64

	Hazardous *bool
}

// Create returns one filter per criterion that is set. The order of the
// result carries no meaning since the filters are conjoined.
func Create(c Criteria) []Filter {
	var fs []Filter
	if c.Date != nil {
		fs = append(fs, OnDate(*c.Date))
	}
	if c.StartDate != nil {
		fs = append(fs, StartDate(*c.StartDate))
	}
	if c.EndDate != nil {
		fs = append(fs, EndDate(*c.EndDate))
	}
	if c.DistanceMin != nil {
		fs = append(fs, MinDistance(*c.DistanceMin))
	}
	if c.DistanceMax != nil {
		fs = append(fs, MaxDistance(*c.DistanceMax))
	}
	if c.VelocityMin != nil {
		fs = append(fs, MinVelocity(*c.VelocityMin))
	}
	if c.VelocityMax != nil {
		fs = append(fs, MaxVelocity(*c.VelocityMax))
	}
	if c.DiameterMin != nil {
		fs = append(fs, MinDiameter(*c.DiameterMin))
	}
	if c.DiameterMax != nil {
		fs = append(fs, MaxDiameter(*c.DiameterMax))
	}
	if c.Hazardous != nil {
		fs = append(fs, Hazardous(*c.Hazardous))
	}
	return fs
}

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	return len(Create(c)) == 0
}

// Validate rejects negative numeric bounds. Contradictory bounds (min above
// max) are allowed and simply match nothing.
func (c Criteria) Validate() error {
	bounds := []struct {
		name string
		v    *float64
	}{
		{"min-distance", c.DistanceMin},
		{"max-distance", c.DistanceMax},
		{"min-velocity", c.VelocityMin},
		{"max-velocity", c.VelocityMax},
		{"min-diameter", c.DiameterMin},
		{"max-diameter", c.DiameterMax},
	}
	for _, b := range bounds {
		if b.v != nil && (*b.v < 0 || math.IsNaN(*b.v)) {
			return errors.Wrapf(types.ErrInvalidCriterion, "%s must be a non-negative number", b.name)
		}
	}
	return nil
}

// String joins the filters the criteria produce, e.g.
// "distance>=0.01 AND hazardous=true". Empty criteria render as "all".
func (c Criteria) String() string {
	fs := Create(c)
	if len(fs) == 0 {
		return "all"
	}
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return strings.Join(parts, " AND ")
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrapf(types.ErrInvalidCriterion, "date %q must be YYYY-MM-DD", s)
	}
	return d, nil
}
