package types

import "github.com/cockroachdb/errors"

// Construction errors. Returned by the entity constructors and by
// database.New; a database is never built when one of these occurs.
var (
	ErrInvalidDesignation   = errors.New("designation must not be empty")
	ErrDuplicateDesignation = errors.New("duplicate designation")
	ErrUnknownDesignation   = errors.New("close approach references unknown designation")
	ErrAlreadyLinked        = errors.New("entity is already linked")
)

// Input errors. ErrMalformedValue is always wrapped with the offending field
// name and raw value.
var (
	ErrMalformedValue   = errors.New("malformed value")
	ErrMissingField     = errors.New("missing field")
	ErrInvalidCriterion = errors.New("invalid criterion")
)

// Output errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Malformed wraps ErrMalformedValue with the field and raw input that failed
// to coerce.
func Malformed(field, raw string) error {
	return errors.Wrapf(ErrMalformedValue, "%s %q", field, raw)
}
