package isogeny

import "github.com/smallyu/go-theta-isogeny/internal/chain"

// Errors returned by ComputeChain. Step-scoped failures arrive wrapped in a
// *StepError and match with errors.Is.
var (
	ErrMalformedKernel        = chain.ErrMalformedKernel
	ErrDegenerateStepMismatch = chain.ErrDegenerateStepMismatch
	ErrDegenerateStep         = chain.ErrDegenerateStep
	ErrStrategyLengthMismatch = chain.ErrStrategyLengthMismatch
	ErrFlagLengthMismatch     = chain.ErrFlagLengthMismatch
	ErrNotProduct             = chain.ErrNotProduct
	ErrInvalidParameters      = chain.ErrInvalidParameters
)

// StepError attributes a failure to the step (and phase) where it occurred.
type StepError = chain.StepError

// Step phases reported in StepError.Phase and StepInfo.Phase.
const (
	PhaseDouble = chain.PhaseDouble
	PhaseGluing = chain.PhaseGluing
	PhaseStep   = chain.PhaseStep
	PhaseSplit  = chain.PhaseSplit
)
