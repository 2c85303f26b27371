package chain

import (
	"time"

	"github.com/rs/zerolog"
)

// StepInfo describes a completed step. Doublings counts the kernel
// doublings of the run so far and Held the kernel entries still waiting.
type StepInfo struct {
	RunID       string
	Step        int
	Phase       string
	Doublings   int
	Held        int
	InverseFree bool
	Elapsed     time.Duration
}

// Observer receives counts as the chain runs. internal/metrics provides a
// Prometheus implementation.
type Observer interface {
	ObserveDoublings(onProduct bool, count int)
	ObserveStep(info StepInfo)
	ObserveChain(n int, elapsed time.Duration, err error)
}

type config struct {
	logger           zerolog.Logger
	hook             func(StepInfo)
	observer         Observer
	inverseFree      bool
	inverseFreeSteps []bool
	kernelCheck      bool
	kernelImages     bool
}

func defaultConfig() *config {
	return &config{
		logger:      zerolog.Nop(),
		kernelCheck: true,
	}
}

// Option configures a chain evaluation.
type Option func(*config)

// WithLogger sets the logger for per-run and per-step events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStepHook is called after every step, in order.
func WithStepHook(h func(StepInfo)) Option {
	return func(c *config) { c.hook = h }
}

// WithObserver reports doublings, steps and finished runs to o.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observer = o }
}

// WithInverseFree selects the inverse-free formula for every generic step.
func WithInverseFree(on bool) Option {
	return func(c *config) { c.inverseFree = on }
}

// WithInverseFreeSteps selects the formula per step, e.g. from
// strategy.Plan.InverseFree. It takes precedence over WithInverseFree and
// must have one entry per step.
func WithInverseFreeSteps(steps []bool) Option {
	return func(c *config) { c.inverseFreeSteps = steps }
}

// WithKernelCheck toggles the order and curve-membership checks on the
// inputs. On by default.
func WithKernelCheck(on bool) Option {
	return func(c *config) { c.kernelCheck = on }
}

// WithKernelImages also reports the images of the two kernel generators.
func WithKernelImages(on bool) Option {
	return func(c *config) { c.kernelImages = on }
}
