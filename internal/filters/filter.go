// Package filters builds conjunctive predicates over close approaches and
// bounds lazily generated result streams.
//
// A Filter is a tagged value: a field selector, a comparison operator, and a
// reference value fixed at construction. The set of fields and operators is
// closed; a Filter outside that set is a programming error and panics.
package filters

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/neo/pkg/types"
)

// Field selects the close approach attribute a filter compares.
type Field int

// Filterable fields. Diameter and hazardous are read through the linked NEO.
const (
	FieldDate Field = iota + 1
	FieldDistance
	FieldVelocity
	FieldDiameter
	FieldHazardous
)

func (f Field) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldDistance:
		return "distance"
	case FieldVelocity:
		return "velocity"
	case FieldDiameter:
		return "diameter"
	case FieldHazardous:
		return "hazardous"
	default:
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
}

// Op compares an approach attribute (left) with the reference value (right).
type Op int

// Comparison operators.
const (
	OpEqual Op = iota + 1
	OpLessEqual
	OpGreaterEqual
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpLessEqual:
		return "<="
	case OpGreaterEqual:
		return ">="
	default:
		return "op(" + strconv.Itoa(int(o)) + ")"
	}
}

// Filter is a single criterion. The zero value is not a valid filter; use
// the constructors below.
type Filter struct {
	Field Field
	Op    Op

	date time.Time
	num  float64
	flag bool
}

// OnDate matches approaches on the calendar day of d (UTC).
func OnDate(d time.Time) Filter { return dateFilter(OpEqual, d) }

// StartDate matches approaches on or after the calendar day of d.
func StartDate(d time.Time) Filter { return dateFilter(OpGreaterEqual, d) }

// EndDate matches approaches on or before the calendar day of d.
func EndDate(d time.Time) Filter { return dateFilter(OpLessEqual, d) }

// MinDistance matches approaches at least au astronomical units away.
func MinDistance(au float64) Filter { return numFilter(FieldDistance, OpGreaterEqual, au) }

// MaxDistance matches approaches at most au astronomical units away.
func MaxDistance(au float64) Filter { return numFilter(FieldDistance, OpLessEqual, au) }

// MinVelocity matches approaches at least kms kilometers per second.
func MinVelocity(kms float64) Filter { return numFilter(FieldVelocity, OpGreaterEqual, kms) }

// MaxVelocity matches approaches at most kms kilometers per second.
func MaxVelocity(kms float64) Filter { return numFilter(FieldVelocity, OpLessEqual, kms) }

// MinDiameter matches approaches by NEOs at least km kilometers across.
// NEOs with unknown diameter never match.
func MinDiameter(km float64) Filter { return numFilter(FieldDiameter, OpGreaterEqual, km) }

// MaxDiameter matches approaches by NEOs at most km kilometers across.
// NEOs with unknown diameter never match.
func MaxDiameter(km float64) Filter { return numFilter(FieldDiameter, OpLessEqual, km) }

// Hazardous matches approaches by NEOs whose hazardous flag equals want.
func Hazardous(want bool) Filter {
	return Filter{Field: FieldHazardous, Op: OpEqual, flag: want}
}

func dateFilter(op Op, d time.Time) Filter {
	return Filter{Field: FieldDate, Op: op, date: truncateDay(d)}
}

func numFilter(field Field, op Op, v float64) Filter {
	return Filter{Field: field, Op: op, num: v}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Match reports whether the approach satisfies the filter. The approach must
// be linked when the filter reads NEO fields.
func (f Filter) Match(a *types.CloseApproach) bool {
	switch f.Field {
	case FieldDate:
		return compareDate(f.Op, a.Date(), f.date)
	case FieldDistance:
		return compareNum(f.Op, a.Distance, f.num)
	case FieldVelocity:
		return compareNum(f.Op, a.Velocity, f.num)
	case FieldDiameter:
		return compareNum(f.Op, a.NEO.Diameter, f.num)
	case FieldHazardous:
		if f.Op != OpEqual {
			panic(errors.AssertionFailedf("unsupported operator %s for field %s", f.Op, f.Field))
		}
		return a.NEO.Hazardous == f.flag
	default:
		panic(errors.AssertionFailedf("unsupported criterion: %s", f.Field))
	}
}

// compareNum relies on IEEE semantics: every comparison with NaN is false.
func compareNum(op Op, left, right float64) bool {
	switch op {
	case OpEqual:
		return left == right
	case OpLessEqual:
		return left <= right
	case OpGreaterEqual:
		return left >= right
	default:
		panic(errors.AssertionFailedf("unsupported operator: %s", op))
	}
}

func compareDate(op Op, left, right time.Time) bool {
	switch op {
	case OpEqual:
		return left.Equal(right)
	case OpLessEqual:
		return !left.After(right)
	case OpGreaterEqual:
		return !left.Before(right)
	default:
		panic(errors.AssertionFailedf("unsupported operator: %s", op))
	}
}

// String renders the filter as "field op value", e.g. "distance<=0.1".
func (f Filter) String() string {
	var v string
	switch f.Field {
	case FieldDate:
		v = f.date.Format(DateLayout)
	case FieldHazardous:
		v = strconv.FormatBool(f.flag)
	default:
		v = strconv.FormatFloat(f.num, 'g', -1, 64)
	}
	return fmt.Sprintf("%s%s%s", f.Field, f.Op, v)
}

// MatchAll reports whether every filter matches. Evaluation stops at the
// first filter that fails.
func MatchAll(a *types.CloseApproach, fs []Filter) bool {
	for _, f := range fs {
		if !f.Match(a) {
			return false
		}
	}
	return true
}
