package theta

import (
	"fmt"
	"math/bits"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/montgomery"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/product"
)

// EvenIndex is a characteristic (chi, zeta) with chi.zeta even.
type EvenIndex struct {
	Chi, Zeta int
}

// EvenIndices lists the ten even characteristics.
var EvenIndices = func() []EvenIndex {
	var out []EvenIndex
	for chi := 0; chi < 4; chi++ {
		for zeta := 0; zeta < 4; zeta++ {
			if bits.OnesCount(uint(chi&zeta))%2 == 0 {
				out = append(out, EvenIndex{chi, zeta})
			}
		}
	}
	return out
}()

// EvenConstant returns sum_i (-1)^(chi.i) null[i] null[i xor zeta], the
// squared level-4 theta constant of characteristic (chi, zeta).
func EvenConstant(f *field.Field, null Point, idx EvenIndex) field.Element {
	acc := f.Zero()
	for i := 0; i < 4; i++ {
		term := f.Mul(null[i], null[i^idx.Zeta])
		if bits.OnesCount(uint(idx.Chi&i))%2 == 1 {
			acc = f.Sub(acc, term)
		} else {
			acc = f.Add(acc, term)
		}
	}
	return acc
}

// VanishingEvenIndex returns the unique even characteristic whose constant
// vanishes. A null point is a product theta structure exactly when one
// does.
func VanishingEvenIndex(f *field.Field, null Point) (EvenIndex, error) {
	var found []EvenIndex
	for _, idx := range EvenIndices {
		if EvenConstant(f, null, idx).IsZero() {
			found = append(found, idx)
		}
	}
	if len(found) != 1 {
		return EvenIndex{}, fmt.Errorf("%w: %d vanishing even constants", ErrNotProduct, len(found))
	}
	return found[0], nil
}

type gaussian [2]int64

// splittingMatrices move the vanishing even constant to (3, 3), where the
// structure is the product of the structures (a:c) on E1 and (a:b) on E2.
var splittingMatrices = map[EvenIndex][4][4]gaussian{
	{0, 0}: {
		{{1, 0}, {0, -1}, {0, -1}, {-1, 0}},
		{{1, 0}, {0, 1}, {0, -1}, {1, 0}},
		{{1, 0}, {0, -1}, {0, 1}, {1, 0}},
		{{-1, 0}, {0, -1}, {0, -1}, {1, 0}},
	},
	{0, 1}: {
		{{1, -1}, {}, {1, 1}, {}},
		{{}, {1, -1}, {}, {1, 1}},
		{{1, 1}, {}, {1, -1}, {}},
		{{}, {-1, -1}, {}, {-1, 1}},
	},
	{0, 2}: {
		{{1, -1}, {1, 1}, {}, {}},
		{{1, 1}, {1, -1}, {}, {}},
		{{}, {}, {1, -1}, {1, 1}},
		{{}, {}, {-1, -1}, {-1, 1}},
	},
	{0, 3}: {
		{{1, 0}, {}, {}, {}},
		{{}, {1, 0}, {}, {}},
		{{}, {}, {1, 0}, {}},
		{{}, {}, {}, {-1, 0}},
	},
	{1, 0}: {
		{{1, 0}, {1, 0}, {0, -1}, {0, -1}},
		{{1, 0}, {-1, 0}, {0, -1}, {0, 1}},
		{{1, 0}, {1, 0}, {0, 1}, {0, 1}},
		{{-1, 0}, {1, 0}, {0, -1}, {0, 1}},
	},
	{1, 2}: {
		{{1, -1}, {1, -1}, {}, {}},
		{{1, 1}, {-1, -1}, {}, {}},
		{{}, {}, {1, -1}, {1, -1}},
		{{}, {}, {-1, -1}, {1, 1}},
	},
	{2, 0}: {
		{{1, 0}, {0, -1}, {1, 0}, {0, -1}},
		{{1, 0}, {0, 1}, {1, 0}, {0, 1}},
		{{1, 0}, {0, -1}, {-1, 0}, {0, 1}},
		{{-1, 0}, {0, -1}, {1, 0}, {0, 1}},
	},
	{2, 1}: {
		{{1, -1}, {}, {1, -1}, {}},
		{{}, {1, -1}, {}, {1, -1}},
		{{1, 1}, {}, {-1, -1}, {}},
		{{}, {-1, -1}, {}, {1, 1}},
	},
	{3, 0}: {
		{{1, 0}, {1, 0}, {1, 0}, {1, 0}},
		{{1, 0}, {-1, 0}, {1, 0}, {-1, 0}},
		{{1, 0}, {1, 0}, {-1, 0}, {-1, 0}},
		{{-1, 0}, {1, 0}, {1, 0}, {-1, 0}},
	},
	{3, 3}: {
		{{1, 0}, {}, {}, {}},
		{{}, {1, 0}, {}, {}},
		{{}, {}, {1, 0}, {}},
		{{}, {}, {}, {1, 0}},
	},
}

// Splitting is the change of theta structure from a product theta
// structure to E1 x E2 in Montgomery form.
type Splitting struct {
	f       *field.Field
	index   EvenIndex
	m       [4][4]field.Element
	nulls   [2][2]field.Element
	product *product.EllipticProduct
}

// NewSplitting recognises s as a product structure and recovers both
// Montgomery coefficients.
func NewSplitting(s *Structure) (*Splitting, error) {
	f := s.Field()
	idx, err := VanishingEvenIndex(f, s.Null())
	if err != nil {
		return nil, err
	}
	sp := &Splitting{f: f, index: idx}
	for r, row := range splittingMatrices[idx] {
		for c, g := range row {
			sp.m[r][c] = f.FromGaussian(g[0], g[1])
		}
	}

	null := sp.apply(s.Null())
	sp.nulls = [2][2]field.Element{{null[0], null[2]}, {null[0], null[1]}}

	var curves [2]*montgomery.Curve
	for i, n := range sp.nulls {
		aa, bb := f.Sqr(n[0]), f.Sqr(n[1])
		t1 := f.Add(aa, bb)
		t2 := f.Sub(aa, bb)
		num := f.Neg(f.Add(f.Sqr(t1), f.Sqr(t2)))
		a, err := f.Div(num, f.Mul(t1, t2))
		if err != nil {
			return nil, fmt.Errorf("%w: factor %d has a degenerate null point", ErrNotProduct, i+1)
		}
		if curves[i], err = montgomery.NewCurve(f, a); err != nil {
			return nil, fmt.Errorf("%w: factor %d: %v", ErrNotProduct, i+1, err)
		}
	}
	if sp.product, err = product.New(curves[0], curves[1]); err != nil {
		return nil, err
	}
	return sp, nil
}

func (sp *Splitting) apply(p Point) Point {
	f := sp.f
	var out Point
	for r := 0; r < 4; r++ {
		acc := f.Zero()
		for c := 0; c < 4; c++ {
			if sp.m[r][c].IsZero() {
				continue
			}
			acc = f.Add(acc, f.Mul(sp.m[r][c], p[c]))
		}
		out[r] = acc
	}
	return out
}

// Index returns the vanishing even characteristic.
func (sp *Splitting) Index() EvenIndex {
	return sp.index
}

// Product returns E1 x E2.
func (sp *Splitting) Product() *product.EllipticProduct {
	return sp.product
}

// Eval maps a theta point to the Kummer lines of E1 and E2.
func (sp *Splitting) Eval(p Point) (product.XCouplePoint, error) {
	f := sp.f
	q := sp.apply(p)
	comps := [2][2]field.Element{{q[0], q[2]}, {q[0], q[1]}}
	if comps[0][0].IsZero() && comps[0][1].IsZero() {
		comps[0] = [2]field.Element{q[1], q[3]}
	}
	if comps[1][0].IsZero() && comps[1][1].IsZero() {
		comps[1] = [2]field.Element{q[2], q[3]}
	}

	var xs [2]montgomery.XPoint
	for i, c := range comps {
		a, b := sp.nulls[i][0], sp.nulls[i][1]
		u := f.Mul(a, c[1])
		v := f.Mul(b, c[0])
		x, z := f.Add(u, v), f.Sub(u, v)
		if x.IsZero() && z.IsZero() {
			return product.XCouplePoint{}, fmt.Errorf("%w: image on factor %d", ErrDegenerate, i+1)
		}
		if z.IsZero() {
			x = f.One()
		}
		xs[i] = montgomery.XPoint{X: x, Z: z}
	}
	return product.XCouplePoint{P1: xs[0], P2: xs[1]}, nil
}
