// Package database links near-Earth objects with their close approaches and
// answers lookups and filtered queries over the linked set.
//
// A Database is built once by New and is read-only afterwards, so it may be
// shared between goroutines without locking.
package database

import (
	"iter"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/neo/internal/filters"
	"github.com/mesh-intelligence/neo/internal/logger"
	"github.com/mesh-intelligence/neo/pkg/types"
)

// Database owns both entity collections in load order together with the
// designation and name indices.
type Database struct {
	neos       []*types.NearEarthObject
	approaches []*types.CloseApproach

	byDesignation map[string]*types.NearEarthObject
	byName        map[string]*types.NearEarthObject
}

// New takes ownership of the collections and links them: every approach's
// NEO is set and every NEO's Approaches lists its approaches in input order.
//
// The inputs must be unlinked. New returns ErrUnknownDesignation when an
// approach references a designation with no NEO, ErrDuplicateDesignation
// when two NEOs share a designation, and ErrAlreadyLinked when an input was
// linked before. On error no entity is modified.
func New(neos []*types.NearEarthObject, approaches []*types.CloseApproach) (*Database, error) {
	db := &Database{
		neos:          neos,
		approaches:    approaches,
		byDesignation: make(map[string]*types.NearEarthObject, len(neos)),
		byName:        make(map[string]*types.NearEarthObject),
	}

	for i, neo := range neos {
		if neo.Designation == "" {
			return nil, errors.Wrapf(types.ErrInvalidDesignation, "neo #%d", i)
		}
		if _, dup := db.byDesignation[neo.Designation]; dup {
			return nil, errors.Wrapf(types.ErrDuplicateDesignation, "%q", neo.Designation)
		}
		if len(neo.Approaches) != 0 {
			return nil, errors.Wrapf(types.ErrAlreadyLinked, "neo %q has approaches", neo.Designation)
		}
		db.byDesignation[neo.Designation] = neo
		if neo.HasName() {
			db.byName[neo.Name] = neo
		}
	}

	owners, err := db.resolve()
	if err != nil {
		return nil, err
	}
	db.link(owners)

	logger.Logger.Debugw("linked database",
		"neos", len(neos),
		"named", len(db.byName),
		"approaches", len(approaches))
	return db, nil
}

// resolve looks up the owner of every approach without touching any entity,
// so a lookup failure leaves the inputs as they were.
func (db *Database) resolve() ([]*types.NearEarthObject, error) {
	owners := make([]*types.NearEarthObject, len(db.approaches))
	for i, ca := range db.approaches {
		if ca.NEO != nil {
			return nil, errors.Wrapf(types.ErrAlreadyLinked, "approach #%d (%q)", i, ca.Designation)
		}
		neo, ok := db.byDesignation[ca.Designation]
		if !ok {
			return nil, errors.Wrapf(types.ErrUnknownDesignation, "approach #%d: %q", i, ca.Designation)
		}
		owners[i] = neo
	}
	return owners, nil
}

func (db *Database) link(owners []*types.NearEarthObject) {
	for i, ca := range db.approaches {
		neo := owners[i]
		ca.NEO = neo
		neo.Approaches = append(neo.Approaches, ca)
	}
}

// GetByDesignation returns the NEO with exactly this primary designation.
func (db *Database) GetByDesignation(designation string) (*types.NearEarthObject, bool) {
	neo, ok := db.byDesignation[designation]
	return neo, ok
}

// GetByName returns the NEO with exactly this IAU name. The empty name never
// matches.
func (db *Database) GetByName(name string) (*types.NearEarthObject, bool) {
	if name == "" {
		return nil, false
	}
	neo, ok := db.byName[name]
	return neo, ok
}

// Query lazily yields, in load order, the close approaches that match every
// filter. With no filters every approach is yielded.
func (db *Database) Query(fs ...filters.Filter) iter.Seq[*types.CloseApproach] {
	fs = slices.Clone(fs)
	return func(yield func(*types.CloseApproach) bool) {
		for _, ca := range db.approaches {
			if !filters.MatchAll(ca, fs) {
				continue
			}
			if !yield(ca) {
				return
			}
		}
	}
}

// NEOs yields every NEO in load order.
func (db *Database) NEOs() iter.Seq[*types.NearEarthObject] {
	return slices.Values(db.neos)
}

// Approaches yields every close approach in load order.
func (db *Database) Approaches() iter.Seq[*types.CloseApproach] {
	return slices.Values(db.approaches)
}

// Stats reports collection sizes.
type Stats struct {
	NEOs       int `json:"neos"`
	Named      int `json:"named"`
	Approaches int `json:"approaches"`
}

// Stats returns the sizes of the collections and the name index.
func (db *Database) Stats() Stats {
	return Stats{
		NEOs:       len(db.neos),
		Named:      len(db.byName),
		Approaches: len(db.approaches),
	}
}
