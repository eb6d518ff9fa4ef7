package types

import (
	"fmt"
	"math"
	"strings"
)

// NearEarthObject is a small solar-system body identified by its primary
// designation. Approaches is empty at construction and populated exactly
// once when a database links the collections.
type NearEarthObject struct {
	Designation string  // Primary designation (required, unique).
	Name        string  // IAU name; empty when the object has none.
	Diameter    float64 // Kilometers; NaN when unknown.
	Hazardous   bool    // Potentially hazardous asteroid flag.

	Approaches []*CloseApproach
}

// NewNearEarthObject returns an unlinked NEO. The name is trimmed and an
// empty name means the object is unnamed. Diameter must be NaN (unknown) or
// non-negative.
func NewNearEarthObject(designation, name string, diameter float64, hazardous bool) (*NearEarthObject, error) {
	designation = strings.TrimSpace(designation)
	if designation == "" {
		return nil, ErrInvalidDesignation
	}
	if diameter < 0 || math.IsInf(diameter, 0) {
		return nil, Malformed("diameter", fmt.Sprint(diameter))
	}
	return &NearEarthObject{
		Designation: designation,
		Name:        strings.TrimSpace(name),
		Diameter:    diameter,
		Hazardous:   hazardous,
	}, nil
}

// HasName reports whether the object carries an IAU name.
func (n *NearEarthObject) HasName() bool {
	return n.Name != ""
}

// HasDiameter reports whether the diameter is known.
func (n *NearEarthObject) HasDiameter() bool {
	return !math.IsNaN(n.Diameter)
}

// FullName returns "designation (name)", or just the designation for
// unnamed objects.
func (n *NearEarthObject) FullName() string {
	if !n.HasName() {
		return n.Designation
	}
	return fmt.Sprintf("%s (%s)", n.Designation, n.Name)
}

func (n *NearEarthObject) String() string {
	hazard := "is not"
	if n.Hazardous {
		hazard = "is"
	}
	if !n.HasDiameter() {
		return fmt.Sprintf("NEO %s has an unknown diameter and %s potentially hazardous.", n.FullName(), hazard)
	}
	return fmt.Sprintf("NEO %s has a diameter of %.3f km and %s potentially hazardous.", n.FullName(), n.Diameter, hazard)
}
