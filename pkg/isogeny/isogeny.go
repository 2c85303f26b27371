// Package isogeny computes chains of (2,2)-isogenies between products of
// supersingular Montgomery curves over Fp2, as used by FESTA decryption.
package isogeny

import (
	"context"
	"math/big"

	"github.com/smallyu/go-theta-isogeny/internal/chain"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/montgomery"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/product"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/strategy"
)

type (
	// Field is Fp2 = Fp[i]/(i^2+1) for a prime p = 3 mod 4.
	Field = field.Field
	// Element is an element of a Field.
	Element = field.Element
	// Curve is the Montgomery curve y^2 = x^3 + A x^2 + x.
	Curve = montgomery.Curve
	// EllipticProduct is E1 x E2.
	EllipticProduct = product.EllipticProduct
	// CouplePoint is a point of E1 x E2.
	CouplePoint = product.CouplePoint
	// XCouplePoint is a point of E1 x E2 known up to sign on each factor.
	XCouplePoint = product.XCouplePoint

	// Result is the codomain and the images of the auxiliary points.
	Result = chain.Result
	// StepInfo is passed to the step hook after every step.
	StepInfo = chain.StepInfo
	// Observer receives evaluation counts, see internal/metrics.
	Observer = chain.Observer
	// Option configures ComputeChain.
	Option = chain.Option
	// Plan is an optimal strategy together with per-step formula choices.
	Plan = strategy.Plan
)

// Evaluation options.
var (
	WithLogger           = chain.WithLogger
	WithStepHook         = chain.WithStepHook
	WithObserver         = chain.WithObserver
	WithInverseFree      = chain.WithInverseFree
	WithInverseFreeSteps = chain.WithInverseFreeSteps
	WithKernelCheck      = chain.WithKernelCheck
	WithKernelImages     = chain.WithKernelImages
)

// NewField returns Fp2 for the prime p.
func NewField(p *big.Int) (*Field, error) {
	return field.New(p)
}

// NewCurve returns the Montgomery curve with coefficient a.
func NewCurve(f *Field, a Element) (*Curve, error) {
	return montgomery.NewCurve(f, a)
}

// NewProduct returns E1 x E2.
func NewProduct(e1, e2 *Curve) (*EllipticProduct, error) {
	return product.New(e1, e2)
}

// ComputeChain evaluates the (2,2)-isogeny chain of length n with kernel
// <[4]k1, [4]k2> on e and returns the codomain product together with the
// images of aux.
//
// k1 and k2 must have order 2^(n+2) and generate a maximal isotropic
// subgroup. strategy has n-1 entries and flags one entry per step; flags[i]
// must be true exactly when step i is degenerate, and a true flag that
// matches makes the chain fail with ErrDegenerateStep.
func ComputeChain(e *EllipticProduct, k1, k2 CouplePoint, aux []CouplePoint, n int, strategy []int, flags []bool, opts ...Option) (*Result, error) {
	return ComputeChainContext(context.Background(), e, k1, k2, aux, n, strategy, flags, opts...)
}

// ComputeChainContext is ComputeChain with cancellation checked between
// steps.
func ComputeChainContext(ctx context.Context, e *EllipticProduct, k1, k2 CouplePoint, aux []CouplePoint, n int, strategy []int, flags []bool, opts ...Option) (*Result, error) {
	return chain.Run(ctx, chain.Input{
		Product:  e,
		K1:       k1,
		K2:       k2,
		Aux:      aux,
		N:        n,
		Strategy: strategy,
		Flags:    flags,
	}, opts...)
}

// OptimalStrategy returns the cheapest strategy for a chain of length n
// under the FESTA operation costs. Pass Plan.InverseFree to
// WithInverseFreeSteps to use the formula choices it was costed with.
func OptimalStrategy(n int) (Plan, error) {
	return strategy.Optimal(n, strategy.FESTACosts)
}

// BalancedStrategy returns the strategy that always doubles half way.
func BalancedStrategy(n int) []int {
	return strategy.Balanced(n)
}
