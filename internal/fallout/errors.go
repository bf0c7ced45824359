package fallout

import (
	"errors"
	"fmt"

	"github.com/san-kum/effectsim/internal/graph"
)

var (
	// ErrInvalidParameters indicates a scenario that is structurally
	// invalid. It is raised before any table lookup.
	ErrInvalidParameters = errors.New("fallout: invalid scenario parameters")

	ErrIncompleteTables = errors.New("fallout: incomplete table set")
)

// Rejected reports whether err rejects the scenario itself: invalid
// parameters, or a yield, burst height or arrival time outside the tables.
// Other errors point at the tables or the code and should not be ignored.
func Rejected(err error) bool {
	return errors.Is(err, ErrInvalidParameters) || errors.Is(err, graph.ErrOutOfDomain)
}

// ParameterError names the offending scenario field.
type ParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("fallout: %s = %g: %s", e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameters
}

// Stage identifies the sub-calculation that consulted a table.
type Stage string

const (
	StageApplicability Stage = "applicability"
	StageSourceTerm    Stage = "source-term"
	StageDecay         Stage = "decay-table"
)

// StageError wraps a lookup failure with the stage it happened in.
// Out-of-domain lookups still match graph.ErrOutOfDomain.
type StageError struct {
	Stage   Stage
	Wrapped error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("fallout: %s: %v", e.Stage, e.Wrapped)
}

func (e *StageError) Unwrap() error {
	return e.Wrapped
}

func stageErr(s Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: s, Wrapped: err}
}
