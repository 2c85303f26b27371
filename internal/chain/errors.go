package chain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedKernel        = errors.New("isogeny: malformed kernel")
	ErrDegenerateStepMismatch = errors.New("isogeny: degenerate flag does not match step")
	ErrDegenerateStep         = errors.New("isogeny: degenerate step")
	ErrStrategyLengthMismatch = errors.New("isogeny: strategy length mismatch")
	ErrFlagLengthMismatch     = errors.New("isogeny: flag length mismatch")
	ErrNotProduct             = errors.New("isogeny: codomain is not an elliptic product")
	ErrInvalidParameters      = errors.New("isogeny: invalid parameters")
)

// Phases of a step reported in StepError.
const (
	PhaseDouble = "double"
	PhaseGluing = "gluing"
	PhaseStep   = "step"
	PhaseSplit  = "split"
)

// StepError attributes a failure to a step of the chain.
type StepError struct {
	Step  int
	Phase string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Phase, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError creates a new StepError.
func NewStepError(step int, phase string, err error) *StepError {
	return &StepError{
		Step:  step,
		Phase: phase,
		Err:   err,
	}
}
