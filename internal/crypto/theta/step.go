package theta

import (
	"fmt"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
)

// StepKernel holds the squared coordinates of two 8-torsion points T1, T2
// lying above the kernel of a (2,2)-isogeny between theta structures.
type StepKernel struct {
	f *field.Field
	// xA, xB from T1 and zA, tB, zC, tD from T2.
	xA, xB, zA, tB, zC, tD field.Element
}

// NewStepKernel squares t1 and t2 and keeps the coordinates the codomain
// formulas need.
func NewStepKernel(f *field.Field, t1, t2 Point) *StepKernel {
	s1 := Squared(f, t1)
	s2 := Squared(f, t2)
	return &StepKernel{
		f:  f,
		xA: s1[0], xB: s1[1],
		zA: s2[0], tB: s2[1], zC: s2[2], tD: s2[3],
	}
}

// Degenerate reports whether the dual codomain null point has a vanishing
// coordinate.
func (k *StepKernel) Degenerate() bool {
	for _, v := range []field.Element{k.xA, k.xB, k.zA, k.tB, k.zC, k.tD} {
		if v.IsZero() {
			return true
		}
	}
	return false
}

// Isogeny builds the step. With inverseFree the dual null point and its
// inverse are scaled by a common factor so no field inversion is needed.
// Both forms give projectively equal images.
func (k *StepKernel) Isogeny(inverseFree bool) (*Step, error) {
	if k.Degenerate() {
		return nil, fmt.Errorf("%w: step kernel", ErrDegenerate)
	}
	f := k.f
	var dual, inv Point
	if inverseFree {
		xAtB := f.Mul(k.xA, k.tB)
		zAxB := f.Mul(k.zA, k.xB)
		zCtD := f.Mul(k.zC, k.tD)
		dual = Point{f.Mul(xAtB, k.zA), f.Mul(zAxB, k.tB), f.Mul(xAtB, k.zC), f.Mul(zAxB, k.tD)}
		inv = Point{f.Mul(k.xB, zCtD), f.Mul(k.xA, zCtD), f.Mul(zAxB, k.tD), f.Mul(xAtB, k.zC)}
	} else {
		i, err := f.BatchInv(k.xA, k.zA, k.tB, k.xB, k.zC, k.tD)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
		}
		b := f.Mul(k.xB, i[0])
		dual = Point{f.One(), b, f.Mul(k.zC, i[1]), f.Mul(f.Mul(k.tD, i[2]), b)}
		binv := f.Mul(i[3], k.xA)
		inv = Point{f.One(), binv, f.Mul(i[4], k.zA), f.Mul(f.Mul(i[5], k.tB), binv)}
	}
	return &Step{f: f, inv: inv, codomain: NewStructure(f, Hadamard(f, dual))}, nil
}

// Step is a (2,2)-isogeny between two theta structures.
type Step struct {
	f        *field.Field
	inv      Point
	codomain *Structure
}

// Codomain returns the target theta structure.
func (s *Step) Codomain() *Structure {
	return s.codomain
}

// Eval computes H(S(p) * inv) where inv is the inverse dual null point.
func (s *Step) Eval(p Point) Point {
	return Hadamard(s.f, Scale(s.f, Squared(s.f, p), s.inv))
}
