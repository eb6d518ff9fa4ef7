package types

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TimeLayout renders approach times without seconds; the source data is
// only precise to the minute.
const TimeLayout = "2006-01-02 15:04"

// CloseApproach is a single recorded pass of an NEO near Earth. Designation
// is the lookup key for the owning NEO; NEO is nil until a database links
// the approach and never nil afterwards.
type CloseApproach struct {
	Designation string
	Time        time.Time // UTC, truncated to the minute.
	Distance    float64   // Nominal approach distance in astronomical units.
	Velocity    float64   // Relative approach velocity in km/s.

	NEO *NearEarthObject
}

// NewCloseApproach returns an unlinked close approach. Distance and velocity
// must be finite and non-negative.
func NewCloseApproach(designation string, t time.Time, distance, velocity float64) (*CloseApproach, error) {
	designation = strings.TrimSpace(designation)
	if designation == "" {
		return nil, ErrInvalidDesignation
	}
	if !validMeasure(distance) {
		return nil, Malformed("distance", fmt.Sprint(distance))
	}
	if !validMeasure(velocity) {
		return nil, Malformed("velocity", fmt.Sprint(velocity))
	}
	return &CloseApproach{
		Designation: designation,
		Time:        t.UTC().Truncate(time.Minute),
		Distance:    distance,
		Velocity:    velocity,
	}, nil
}

func validMeasure(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// TimeString formats the approach time as YYYY-MM-DD HH:MM.
func (c *CloseApproach) TimeString() string {
	return c.Time.Format(TimeLayout)
}

// Date returns midnight UTC of the approach's calendar day.
func (c *CloseApproach) Date() time.Time {
	y, m, d := c.Time.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (c *CloseApproach) String() string {
	name := c.Designation
	if c.NEO != nil {
		name = c.NEO.FullName()
	}
	return fmt.Sprintf("On %s, %s approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		c.TimeString(), name, c.Distance, c.Velocity)
}
