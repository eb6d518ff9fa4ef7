// Package write serializes query results to CSV, JSON, JSONL, or SQLite.
//
// Every writer pulls results one at a time from an iter.Seq, so a bounded
// query is never evaluated past its limit.
package write

import (
	"github.com/mesh-intelligence/neo/pkg/types"
)

// Header is the CSV column order.
var Header = []string{
	"datetime_utc",
	"distance_au",
	"velocity_km_s",
	"designation",
	"name",
	"diameter_km",
	"potentially_hazardous",
}

// Record is the JSON shape of one close approach and its NEO.
type Record struct {
	DatetimeUTC string    `json:"datetime_utc"`
	DistanceAU  float64   `json:"distance_au"`
	VelocityKMS float64   `json:"velocity_km_s"`
	NEO         NEORecord `json:"neo"`
}

// NEORecord is the nested NEO object. DiameterKM is null when unknown.
type NEORecord struct {
	Designation          string   `json:"designation"`
	Name                 string   `json:"name"`
	DiameterKM           *float64 `json:"diameter_km"`
	PotentiallyHazardous bool     `json:"potentially_hazardous"`
}

// NewRecord flattens a linked close approach.
func NewRecord(ca *types.CloseApproach) Record {
	return Record{
		DatetimeUTC: ca.TimeString(),
		DistanceAU:  ca.Distance,
		VelocityKMS: ca.Velocity,
		NEO:         NewNEORecord(ca.NEO),
	}
}

// NewNEORecord converts an NEO to its output shape.
func NewNEORecord(neo *types.NearEarthObject) NEORecord {
	r := NEORecord{
		Designation:          neo.Designation,
		Name:                 neo.Name,
		PotentiallyHazardous: neo.Hazardous,
	}
	if neo.HasDiameter() {
		d := neo.Diameter
		r.DiameterKM = &d
	}
	return r
}
