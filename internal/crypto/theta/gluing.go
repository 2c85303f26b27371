package theta

import (
	"fmt"
	"math/bits"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/montgomery"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/product"
)

// GluingKernel carries the base change from E1 x E2 to a theta structure
// adapted to a kernel <T1, T2> of 8-torsion couple points, together with
// the squared coordinates of the kernel in that structure.
type GluingKernel struct {
	e *product.EllipticProduct
	m [4][4]field.Element

	// translate is [2]T1, a point of the 4-torsion above the kernel.
	translate product.CouplePoint
	a, b      Point
	zero      int
	common    uint8
}

// NewGluingKernel computes the base change for the kernel lying below T1
// and T2. Both must have order 8 in the sense that [4]T1 and [4]T2 span a
// maximal isotropic subgroup of E1[2] x E2[2].
func NewGluingKernel(e *product.EllipticProduct, t1, t2 product.CouplePoint) (*GluingKernel, error) {
	f := e.Field()
	t14 := e.Double(t1)
	t24 := e.Double(t2)

	g1, err := baseSubmatrix(e.E1, t14.P1, t24.P1)
	if err != nil {
		return nil, fmt.Errorf("first factor: %w", err)
	}
	g2, err := baseSubmatrix(e.E2, t14.P2, t24.P2)
	if err != nil {
		return nil, fmt.Errorf("second factor: %w", err)
	}

	// Rows of the product structure are the tensors g1[j] (x) g2[k] acting
	// on (X1X2, X1Z2, Z1X2, Z1Z2), taken in the order 00, 01, 10, 11.
	var tensor [4][4]field.Element
	for j := 0; j < 2; j++ {
		for k := 0; k < 2; k++ {
			l, r := g1[j], g2[k]
			tensor[2*j+k] = [4]field.Element{
				f.Mul(l[0], r[0]), f.Mul(l[0], r[1]), f.Mul(l[1], r[0]), f.Mul(l[1], r[1]),
			}
		}
	}

	k := &GluingKernel{e: e, translate: t14}
	for c := 0; c < 4; c++ {
		k.m[0][c] = f.Add(tensor[0][c], tensor[3][c])
		k.m[1][c] = f.Add(tensor[1][c], tensor[2][c])
		k.m[2][c] = f.Sub(tensor[0][c], tensor[3][c])
		k.m[3][c] = f.Sub(tensor[1][c], tensor[2][c])
	}

	k.a = Squared(f, k.apply(t1.XZ()))
	k.b = Squared(f, k.apply(t2.XZ()))
	k.common = k.a.ZeroMask() & k.b.ZeroMask()
	if k.common == 0 {
		return nil, fmt.Errorf("%w: kernel images share no vanishing dual coordinate", ErrMalformedKernel)
	}
	k.zero = bits.TrailingZeros8(k.common)
	return k, nil
}

// baseSubmatrix returns two linear forms in (X : Z) on c. The first
// vanishes at t, the second at t + [2]s, and they agree at s.
func baseSubmatrix(c *montgomery.Curve, t, s montgomery.Point) ([2][2]field.Element, error) {
	f := c.F
	r := c.Add(t, c.Double(s))

	tx := t.XZ()
	rx := r.XZ()
	sx := s.XZ()

	l0 := [2]field.Element{tx.Z, f.Neg(tx.X)}
	l1 := [2]field.Element{rx.Z, f.Neg(rx.X)}
	det := f.Sub(f.Mul(l0[0], l1[1]), f.Mul(l0[1], l1[0]))
	if det.IsZero() {
		return [2][2]field.Element{}, fmt.Errorf("%w: 2-torsion translate is trivial", ErrMalformedKernel)
	}

	v0 := f.Add(f.Mul(l0[0], sx.X), f.Mul(l0[1], sx.Z))
	v1 := f.Add(f.Mul(l1[0], sx.X), f.Mul(l1[1], sx.Z))
	if v0.IsZero() || v1.IsZero() {
		return [2][2]field.Element{}, fmt.Errorf("%w: kernel generators are dependent", ErrMalformedKernel)
	}
	return [2][2]field.Element{
		{f.Mul(l0[0], v1), f.Mul(l0[1], v1)},
		{f.Mul(l1[0], v0), f.Mul(l1[1], v0)},
	}, nil
}

func (k *GluingKernel) apply(p product.XCouplePoint) Point {
	f := k.e.Field()
	v := [4]field.Element{
		f.Mul(p.P1.X, p.P2.X),
		f.Mul(p.P1.X, p.P2.Z),
		f.Mul(p.P1.Z, p.P2.X),
		f.Mul(p.P1.Z, p.P2.Z),
	}
	var out Point
	for r := 0; r < 4; r++ {
		acc := f.Zero()
		for c := 0; c < 4; c++ {
			acc = f.Add(acc, f.Mul(k.m[r][c], v[c]))
		}
		out[r] = acc
	}
	return out
}

func (k *GluingKernel) normalizers() [4]field.Element {
	z := k.zero
	return [4]field.Element{k.b[1^z], k.a[2^z], k.b[3^z], k.a[3^z]}
}

// Degenerate reports whether the codomain formulas would divide by zero:
// the kernel vanishes on more than one dual coordinate, or one of the
// normalizing coordinates is zero.
func (k *GluingKernel) Degenerate() bool {
	if bits.OnesCount8(k.common) != 1 {
		return true
	}
	for _, n := range k.normalizers() {
		if n.IsZero() {
			return true
		}
	}
	return false
}

// Isogeny builds the gluing isogeny E1 x E2 -> A.
func (k *GluingKernel) Isogeny() (*Gluing, error) {
	if k.Degenerate() {
		return nil, fmt.Errorf("%w: gluing kernel vanishes at %04b/%04b", ErrDegenerate, k.a.ZeroMask(), k.b.ZeroMask())
	}
	f := k.e.Field()
	n := k.normalizers()
	inv, err := f.BatchInv(n[:]...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	z := k.zero
	var null, pre Point
	null[0^z] = f.Zero()
	null[1^z] = f.Mul(n[0], inv[2])
	null[2^z] = f.Mul(n[1], inv[3])
	null[3^z] = f.One()
	pre[0^z] = f.Zero()
	pre[1^z] = f.Mul(inv[0], n[2])
	pre[2^z] = f.Mul(inv[1], n[3])
	pre[3^z] = f.One()

	return &Gluing{
		kernel:   k,
		pre:      pre,
		codomain: NewStructure(f, Hadamard(f, null)),
	}, nil
}

// Gluing is the (2,2)-isogeny from an elliptic product to a theta
// structure.
type Gluing struct {
	kernel   *GluingKernel
	pre      Point
	codomain *Structure
}

// Codomain returns the theta structure the product is glued into.
func (g *Gluing) Codomain() *Structure {
	return g.codomain
}

// Eval maps a couple point to its theta image. It needs full points since
// the image is recovered from p and p + [2]T1.
func (g *Gluing) Eval(p product.CouplePoint) (Point, error) {
	k := g.kernel
	f := k.e.Field()
	z := k.zero

	a := Squared(f, k.apply(p.XZ()))
	b := Squared(f, k.apply(k.e.Add(p, k.translate).XZ()))

	y := f.Mul(a[1^z], g.pre[1^z])
	zz := f.Mul(a[2^z], g.pre[2^z])
	t := a[3^z]
	bx := f.Mul(b[1^z], g.pre[1^z])

	// The image is (x : y : zz : t) up to the permutation by z, with x
	// recovered from the translate by a scalar ratio. Scale through
	// rather than invert.
	var out Point
	switch b2 := f.Mul(b[2^z], g.pre[2^z]); {
	case !zz.IsZero() && !b[3^z].IsZero():
		s := b[3^z]
		out[0^z] = f.Mul(bx, zz)
		out[1^z] = f.Mul(y, s)
		out[2^z] = f.Mul(zz, s)
		out[3^z] = f.Mul(t, s)
	case !b2.IsZero():
		out[0^z] = f.Mul(bx, t)
		out[1^z] = f.Mul(y, b2)
		out[2^z] = f.Mul(zz, b2)
		out[3^z] = f.Mul(t, b2)
	default:
		return Point{}, fmt.Errorf("%w: gluing image of point", ErrDegenerate)
	}
	return Hadamard(f, out), nil
}
