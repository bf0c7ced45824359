package graph

import (
	"errors"
	"fmt"
	"math"
)

// Lookup and construction errors.
var (
	// ErrOutOfDomain indicates a query outside the region the sample data covers.
	ErrOutOfDomain = errors.New("graph: coordinates outside table domain")

	// ErrDimension indicates a coordinate count that does not match the table.
	ErrDimension = errors.New("graph: coordinate count does not match table axes")

	// ErrUnknownColumn indicates a value column name the table does not carry.
	ErrUnknownColumn = errors.New("graph: unknown value column")

	// ErrInvalidTable indicates sample data that cannot form a table.
	ErrInvalidTable = errors.New("graph: invalid table data")
)

// Bound names the side of an interval that a coordinate violated.
type Bound int

const (
	Lower Bound = iota
	Upper
)

func (b Bound) String() string {
	if b == Upper {
		return "upper"
	}
	return "lower"
}

// OutOfDomainError reports the axis and bound a query violated.
// It matches ErrOutOfDomain under errors.Is.
type OutOfDomainError struct {
	Table string
	Axis  string
	Index int
	Value float64
	Limit float64
	Bound Bound
}

func (e *OutOfDomainError) Error() string {
	if math.IsNaN(e.Value) {
		return fmt.Sprintf("graph: table %q: %s is not a number", e.Table, e.Axis)
	}
	rel := "below"
	if e.Bound == Upper {
		rel = "above"
	}
	return fmt.Sprintf("graph: table %q: %s = %g is %s %s bound %g",
		e.Table, e.Axis, e.Value, rel, e.Bound, e.Limit)
}

func (e *OutOfDomainError) Unwrap() error {
	return ErrOutOfDomain
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidTable}, args...)...)
}
