package montgomery

import (
	"fmt"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
)

// Point is a projective point (X:Y:Z) of a Montgomery curve. The identity is
// any point with Z = 0.
type Point struct {
	X, Y, Z field.Element
}

// IsIdentity reports whether p is the point at infinity.
func (p Point) IsIdentity() bool {
	return p.Z.IsZero()
}

// XZ returns the Kummer line image of p.
func (p Point) XZ() XPoint {
	if p.IsIdentity() {
		return XPoint{X: p.Y, Z: p.Z}
	}
	return XPoint{X: p.X, Z: p.Z}
}

// Affine returns (x, y) = (X/Z, Y/Z).
func (c *Curve) Affine(p Point) (field.Element, field.Element, error) {
	if p.IsIdentity() {
		return field.Element{}, field.Element{}, ErrIdentity
	}
	f := c.F
	zi, err := f.Inv(p.Z)
	if err != nil {
		return field.Element{}, field.Element{}, err
	}
	return f.Mul(p.X, zi), f.Mul(p.Y, zi), nil
}

// Equal compares two projective points of the curve.
func (c *Curve) Equal(p, q Point) bool {
	if p.IsIdentity() || q.IsIdentity() {
		return p.IsIdentity() && q.IsIdentity()
	}
	f := c.F
	return f.Mul(p.X, q.Z).Equal(f.Mul(q.X, p.Z)) &&
		f.Mul(p.Y, q.Z).Equal(f.Mul(q.Y, p.Z))
}

// Neg returns -p.
func (c *Curve) Neg(p Point) Point {
	return Point{X: p.X, Y: c.F.Neg(p.Y), Z: p.Z}
}

// Double computes [2]p.
func (c *Curve) Double(p Point) Point {
	if p.IsIdentity() {
		return p
	}
	f := c.F

	xx := f.Sqr(p.X)
	zz := f.Sqr(p.Z)
	dxz := f.MulInt(f.Mul(p.X, p.Z), 2)
	dyz := f.MulInt(f.Mul(p.Y, p.Z), 2)
	t0 := f.Sub(xx, zz)
	t1 := f.Add(xx, zz)

	x := f.Mul(dyz, f.Sqr(t0))
	y := f.Add(f.Mul(t1, f.Add(t1, f.Mul(c.A, dxz))), f.Sqr(dxz))
	y = f.Mul(t0, y)
	z := f.Mul(f.Sqr(dyz), dyz)

	if z.IsZero() {
		return c.Identity()
	}
	return Point{X: x, Y: y, Z: z}
}

// DoubleIter computes [2^k]p.
func (c *Curve) DoubleIter(p Point, k int) Point {
	for i := 0; i < k; i++ {
		p = c.Double(p)
	}
	return p
}

// Add computes p + q, falling back to doubling when p = q.
func (c *Curve) Add(p, q Point) Point {
	if p.IsIdentity() {
		return q
	}
	if q.IsIdentity() {
		return p
	}
	f := c.F

	u := f.Sub(f.Mul(q.Y, p.Z), f.Mul(p.Y, q.Z))
	v := f.Sub(f.Mul(q.X, p.Z), f.Mul(p.X, q.Z))
	if v.IsZero() {
		if u.IsZero() {
			return c.Double(p)
		}
		return c.Identity()
	}

	w := f.Mul(p.Z, q.Z)
	vv := f.Sqr(v)
	vvv := f.Mul(vv, v)
	x1z2 := f.Mul(p.X, q.Z)
	x2z1 := f.Mul(q.X, p.Z)

	r := f.Mul(f.Sqr(u), w)
	r = f.Sub(r, f.Mul(vv, f.Add(f.Add(f.Mul(c.A, w), x1z2), x2z1)))

	x := f.Mul(v, r)
	z := f.Mul(vvv, w)
	y := f.Mul(u, f.Sub(f.Mul(x1z2, vv), r))
	y = f.Sub(y, f.Mul(f.Mul(p.Y, q.Z), vvv))
	return Point{X: x, Y: y, Z: z}
}

// Sub computes p - q.
func (c *Curve) Sub(p, q Point) Point {
	return c.Add(p, c.Neg(q))
}

// ScalarMult computes [k]p for k >= 0 by double-and-add.
func (c *Curve) ScalarMult(p Point, k uint64) Point {
	r := c.Identity()
	for k > 0 {
		if k&1 == 1 {
			r = c.Add(r, p)
		}
		p = c.Double(p)
		k >>= 1
	}
	return r
}

// Order2Exponent returns e such that p has order exactly 2^e, with e <= max.
func (c *Curve) Order2Exponent(p Point, max int) (int, error) {
	for e := 0; e <= max; e++ {
		if p.IsIdentity() {
			return e, nil
		}
		p = c.Double(p)
	}
	return 0, fmt.Errorf("%w: order exceeds 2^%d", ErrOrder, max)
}
