package montgomery

import "github.com/smallyu/go-theta-isogeny/internal/crypto/field"

// XPoint is a point of the Kummer line, (X:Z) = x(P) = x(-P).
// The identity is (1:0).
type XPoint struct {
	X, Z field.Element
}

// NewXPoint returns (x:1).
func (c *Curve) NewXPoint(x field.Element) XPoint {
	return XPoint{X: x, Z: c.F.One()}
}

// IsIdentity reports whether Z = 0.
func (p XPoint) IsIdentity() bool {
	return p.Z.IsZero()
}

// XDouble computes x([2]P) as ((X^2-Z^2)^2 : 4XZ(X^2+AXZ+Z^2)).
func (c *Curve) XDouble(p XPoint) XPoint {
	f := c.F
	xx := f.Sqr(p.X)
	zz := f.Sqr(p.Z)
	xz := f.Mul(p.X, p.Z)

	u := f.Sqr(f.Sub(xx, zz))
	w := f.Add(f.Add(xx, zz), f.Mul(c.A, xz))
	w = f.MulInt(f.Mul(xz, w), 4)
	if w.IsZero() {
		return XPoint{X: f.One(), Z: f.Zero()}
	}
	return XPoint{X: u, Z: w}
}

// XDoubleIter computes x([2^k]P).
func (c *Curve) XDoubleIter(p XPoint, k int) XPoint {
	for i := 0; i < k; i++ {
		p = c.XDouble(p)
	}
	return p
}

// AffineX returns X/Z.
func (c *Curve) AffineX(p XPoint) (field.Element, error) {
	if p.IsIdentity() {
		return field.Element{}, ErrIdentity
	}
	return c.F.Div(p.X, p.Z)
}

// XEqual compares two Kummer points.
func (c *Curve) XEqual(p, q XPoint) bool {
	if p.IsIdentity() || q.IsIdentity() {
		return p.IsIdentity() && q.IsIdentity()
	}
	f := c.F
	return f.Mul(p.X, q.Z).Equal(f.Mul(q.X, p.Z))
}
