// Package chain evaluates chains of (2,2)-isogenies between elliptic
// products, driven by a strategy, and pushes auxiliary points through.
package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/product"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/strategy"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/theta"
)

// Input describes a chain E1 x E2 -> E1' x E2' of length N with kernel
// <[4]K1, [4]K2>. K1 and K2 must have order 2^(N+2).
type Input struct {
	Product  *product.EllipticProduct
	K1, K2   product.CouplePoint
	Aux      []product.CouplePoint
	N        int
	Strategy []int
	Flags    []bool
}

// Result is the codomain product and the images of the auxiliary points,
// in input order. Images are x-only: each component is known up to sign.
type Result struct {
	Product      *product.EllipticProduct
	Images       []product.XCouplePoint
	KernelImages []product.XCouplePoint
	Steps        int
}

type couplePair [2]product.CouplePoint

type thetaPair [2]theta.Point

type evaluator struct {
	cfg   *config
	in    Input
	f     *field.Field
	log   zerolog.Logger
	runID string

	planner *strategy.Planner

	// Before the gluing everything lives on the product.
	coupleKernels []couplePair
	coupleAux     []product.CouplePoint

	codomain     *theta.Structure
	thetaKernels []thetaPair
	thetaAux     []theta.Point

	doublings int
	lastStep  time.Time
}

// Run evaluates the chain. It fails before any arithmetic when the tables
// do not fit N, and otherwise returns the first failing step wrapped in a
// StepError. ctx is checked between steps.
func Run(ctx context.Context, in Input, opts ...Option) (*Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	start := time.Now()
	res, err := run(ctx, in, cfg)
	if cfg.observer != nil {
		cfg.observer.ObserveChain(in.N, time.Since(start), err)
	}
	return res, err
}

func run(ctx context.Context, in Input, cfg *config) (*Result, error) {
	if err := checkShape(in, cfg); err != nil {
		return nil, err
	}

	ev := &evaluator{
		cfg:   cfg,
		in:    in,
		f:     in.Product.Field(),
		runID: uuid.NewString(),
	}
	ev.log = cfg.logger.With().Str("run", ev.runID).Int("n", in.N).Logger()

	if cfg.kernelCheck {
		if err := ev.checkInputs(); err != nil {
			return nil, err
		}
	}

	planner, err := strategy.NewPlanner(in.N, in.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStrategyLengthMismatch, err)
	}
	ev.planner = planner
	ev.coupleKernels = []couplePair{{in.K1, in.K2}}
	ev.coupleAux = append([]product.CouplePoint(nil), in.Aux...)
	if cfg.kernelImages {
		ev.coupleAux = append(ev.coupleAux, in.K1, in.K2)
	}

	ev.log.Debug().Int("aux", len(in.Aux)).Msg("chain started")
	started := time.Now()
	ev.lastStep = started

	for !planner.Done() {
		if err := ctx.Err(); err != nil {
			return nil, NewStepError(planner.Steps(), PhaseStep, err)
		}
		op, err := planner.Next()
		if err != nil {
			return nil, NewStepError(planner.Steps(), PhaseDouble, fmt.Errorf("%w: %w", ErrInvalidParameters, err))
		}
		switch op.Kind {
		case strategy.OpDouble:
			err = ev.double(op.Count)
		case strategy.OpStep:
			err = ev.step(op.Count)
		}
		if err != nil {
			ev.log.Debug().Err(err).Msg("chain failed")
			return nil, err
		}
	}

	res, err := ev.split()
	if err != nil {
		ev.log.Debug().Err(err).Msg("chain failed")
		return nil, err
	}
	ev.log.Debug().
		Dur("elapsed", time.Since(started)).
		Int("doublings", ev.doublings).
		Msg("chain finished")
	return res, nil
}

func checkShape(in Input, cfg *config) error {
	if in.Product == nil {
		return fmt.Errorf("%w: nil product", ErrInvalidParameters)
	}
	if in.N < 1 {
		return fmt.Errorf("%w: chain length %d", ErrInvalidParameters, in.N)
	}
	if len(in.Strategy) != in.N-1 {
		return fmt.Errorf("%w: have %d entries, want %d", ErrStrategyLengthMismatch, len(in.Strategy), in.N-1)
	}
	if len(in.Flags) != in.N {
		return fmt.Errorf("%w: have %d entries, want %d", ErrFlagLengthMismatch, len(in.Flags), in.N)
	}
	if cfg.inverseFreeSteps != nil && len(cfg.inverseFreeSteps) != in.N {
		return fmt.Errorf("%w: %d formula choices for %d steps", ErrInvalidParameters, len(cfg.inverseFreeSteps), in.N)
	}
	if err := strategy.Validate(in.N, in.Strategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	return nil
}

// checkInputs verifies that every input point is on the product and that
// both generators have order exactly 2^(N+2).
func (ev *evaluator) checkInputs() error {
	e := ev.in.Product
	want := ev.in.N + 2
	for i, k := range []product.CouplePoint{ev.in.K1, ev.in.K2} {
		if !e.IsOnProduct(k) {
			return fmt.Errorf("%w: generator %d is not on the product", ErrMalformedKernel, i+1)
		}
		got, err := e.Order2Exponent(k, want)
		if err != nil {
			return fmt.Errorf("%w: generator %d: %w", ErrMalformedKernel, i+1, err)
		}
		if got != want {
			return fmt.Errorf("%w: generator %d has order 2^%d, want 2^%d", ErrMalformedKernel, i+1, got, want)
		}
	}
	for i, p := range ev.in.Aux {
		if !e.IsOnProduct(p) {
			return fmt.Errorf("%w: auxiliary point %d is not on the product", ErrInvalidParameters, i)
		}
	}
	return nil
}

func (ev *evaluator) glued() bool {
	return ev.codomain != nil
}

func (ev *evaluator) double(count int) error {
	ev.doublings += count
	if ev.cfg.observer != nil {
		ev.cfg.observer.ObserveDoublings(!ev.glued(), 2*count)
	}
	if !ev.glued() {
		e := ev.in.Product
		top := ev.coupleKernels[len(ev.coupleKernels)-1]
		ev.coupleKernels = append(ev.coupleKernels, couplePair{
			e.DoubleIter(top[0], count),
			e.DoubleIter(top[1], count),
		})
		return nil
	}

	top := ev.thetaKernels[len(ev.thetaKernels)-1]
	var next thetaPair
	for i := range top {
		p, err := ev.codomain.DoubleIter(top[i], count)
		if err != nil {
			return NewStepError(ev.planner.Steps(), PhaseDouble, fmt.Errorf("%w: %w", ErrDegenerateStep, err))
		}
		next[i] = p
	}
	ev.thetaKernels = append(ev.thetaKernels, next)
	return nil
}

func (ev *evaluator) step(k int) error {
	if k == 0 {
		if err := ev.glue(); err != nil {
			return NewStepError(k, PhaseGluing, err)
		}
	} else if err := ev.generic(k); err != nil {
		return NewStepError(k, PhaseStep, err)
	}

	info := StepInfo{
		RunID:       ev.runID,
		Step:        k,
		Phase:       PhaseStep,
		Doublings:   ev.doublings,
		Held:        len(ev.thetaKernels),
		InverseFree: k > 0 && ev.inverseFree(k),
		Elapsed:     time.Since(ev.lastStep),
	}
	if k == 0 {
		info.Phase = PhaseGluing
	}
	ev.lastStep = time.Now()

	ev.log.Trace().
		Int("step", k).
		Str("phase", info.Phase).
		Int("held", info.Held).
		Dur("elapsed", info.Elapsed).
		Msg("step done")
	if ev.cfg.observer != nil {
		ev.cfg.observer.ObserveStep(info)
	}
	if ev.cfg.hook != nil {
		ev.cfg.hook(info)
	}
	return nil
}

// checkFlag compares the caller's degenerate flag with the detected one.
// A correctly flagged degenerate step still fails with ErrDegenerateStep:
// with xA = zA = 0 the dual null point is zero, and no codomain formula
// gives a structure that can be doubled or split.
func (ev *evaluator) checkFlag(k int, degenerate bool) error {
	if flag := ev.in.Flags[k]; flag != degenerate {
		return fmt.Errorf("%w: flag %t, step is degenerate: %t", ErrDegenerateStepMismatch, flag, degenerate)
	}
	if degenerate {
		return ErrDegenerateStep
	}
	return nil
}

func (ev *evaluator) glue() error {
	top := ev.coupleKernels[len(ev.coupleKernels)-1]
	held := ev.coupleKernels[:len(ev.coupleKernels)-1]

	gk, err := theta.NewGluingKernel(ev.in.Product, top[0], top[1])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedKernel, err)
	}
	if err := ev.checkFlag(0, gk.Degenerate()); err != nil {
		return err
	}
	g, err := gk.Isogeny()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDegenerateStep, err)
	}

	eval := func(p product.CouplePoint) (theta.Point, error) {
		q, err := g.Eval(p)
		if err != nil {
			return theta.Point{}, fmt.Errorf("%w: %w", ErrDegenerateStep, err)
		}
		return q, nil
	}
	kernels := make([]thetaPair, len(held))
	for i, pair := range held {
		for j := range pair {
			if kernels[i][j], err = eval(pair[j]); err != nil {
				return err
			}
		}
	}
	aux := make([]theta.Point, len(ev.coupleAux))
	for i, p := range ev.coupleAux {
		if aux[i], err = eval(p); err != nil {
			return err
		}
	}

	ev.codomain = g.Codomain()
	ev.thetaKernels = kernels
	ev.thetaAux = aux
	ev.coupleKernels = nil
	ev.coupleAux = nil
	return nil
}

func (ev *evaluator) inverseFree(k int) bool {
	if ev.cfg.inverseFreeSteps != nil {
		return ev.cfg.inverseFreeSteps[k]
	}
	return ev.cfg.inverseFree
}

func (ev *evaluator) generic(k int) error {
	top := ev.thetaKernels[len(ev.thetaKernels)-1]
	held := ev.thetaKernels[:len(ev.thetaKernels)-1]

	sk := theta.NewStepKernel(ev.f, top[0], top[1])
	if err := ev.checkFlag(k, sk.Degenerate()); err != nil {
		return err
	}
	s, err := sk.Isogeny(ev.inverseFree(k))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDegenerateStep, err)
	}

	for i := range held {
		held[i] = thetaPair{s.Eval(held[i][0]), s.Eval(held[i][1])}
	}
	for i := range ev.thetaAux {
		ev.thetaAux[i] = s.Eval(ev.thetaAux[i])
	}
	ev.thetaKernels = held
	ev.codomain = s.Codomain()
	return nil
}

func (ev *evaluator) split() (*Result, error) {
	n := ev.in.N
	sp, err := theta.NewSplitting(ev.codomain)
	if err != nil {
		return nil, NewStepError(n-1, PhaseSplit, fmt.Errorf("%w: %w", ErrNotProduct, err))
	}

	images := make([]product.XCouplePoint, len(ev.thetaAux))
	for i, p := range ev.thetaAux {
		x, err := sp.Eval(p)
		if err != nil {
			if errors.Is(err, theta.ErrDegenerate) {
				err = fmt.Errorf("%w: point %d: %w", ErrNotProduct, i, err)
			}
			return nil, NewStepError(n-1, PhaseSplit, err)
		}
		images[i] = x
	}

	res := &Result{Product: sp.Product(), Images: images, Steps: ev.planner.Steps()}
	if ev.cfg.kernelImages {
		m := len(ev.in.Aux)
		res.Images, res.KernelImages = images[:m], images[m:]
	}
	return res, nil
}
