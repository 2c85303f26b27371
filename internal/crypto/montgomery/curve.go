package montgomery

import (
	"errors"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
)

var (
	ErrSingular   = errors.New("montgomery: singular curve (A^2 = 4)")
	ErrNotOnCurve = errors.New("montgomery: point is not on the curve")
	ErrIdentity   = errors.New("montgomery: point at infinity has no affine form")
	ErrOrder      = errors.New("montgomery: point order is not the expected power of two")
)

// Curve is the Montgomery curve y^2 = x^3 + A*x^2 + x over GF(p^2).
type Curve struct {
	F *field.Field
	A field.Element
}

// NewCurve builds the curve with coefficient a and rejects singular models.
func NewCurve(f *field.Field, a field.Element) (*Curve, error) {
	four := f.FromInt(4)
	if f.Sqr(a).Equal(four) {
		return nil, ErrSingular
	}
	return &Curve{F: f, A: a}, nil
}

// JInvariant returns 256 (A^2 - 3)^3 / (A^2 - 4).
func (c *Curve) JInvariant() field.Element {
	f := c.F
	a2 := f.Sqr(c.A)
	num := f.Sub(a2, f.FromInt(3))
	num = f.Mul(f.Sqr(num), num)
	num = f.MulInt(num, 256)

	// NewCurve guarantees A^2 != 4.
	j, _ := f.Div(num, f.Sub(a2, f.FromInt(4)))
	return j
}

// rhs evaluates x^3 + A x^2 + x.
func (c *Curve) rhs(x field.Element) field.Element {
	f := c.F
	t := f.Add(f.Mul(f.Add(x, c.A), x), f.One())
	return f.Mul(t, x)
}

// HasPointWithX reports whether x is the abscissa of a point of the curve
// (rather than of its quadratic twist).
func (c *Curve) HasPointWithX(x field.Element) bool {
	return c.F.IsSquare(c.rhs(x))
}

// Identity is the point at infinity (0:1:0).
func (c *Curve) Identity() Point {
	return Point{X: c.F.Zero(), Y: c.F.One(), Z: c.F.Zero()}
}

// NewPoint builds a projective point from affine coordinates and checks the
// curve equation.
func (c *Curve) NewPoint(x, y field.Element) (Point, error) {
	f := c.F
	if !f.Sqr(y).Equal(c.rhs(x)) {
		return Point{}, ErrNotOnCurve
	}
	return Point{X: x, Y: y, Z: f.One()}, nil
}

// LiftX returns a point with abscissa x. The sign of y is the one returned
// by the field square root.
func (c *Curve) LiftX(x field.Element) (Point, error) {
	y, err := c.F.Sqrt(c.rhs(x))
	if err != nil {
		return Point{}, ErrNotOnCurve
	}
	return Point{X: x, Y: y, Z: c.F.One()}, nil
}

// IsOnCurve checks Y^2 Z = X^3 + A X^2 Z + X Z^2.
func (c *Curve) IsOnCurve(p Point) bool {
	if p.IsIdentity() {
		return !p.Y.IsZero()
	}
	f := c.F
	lhs := f.Mul(f.Sqr(p.Y), p.Z)
	zz := f.Sqr(p.Z)
	rhs := f.Mul(f.Sqr(p.X), f.Add(p.X, f.Mul(c.A, p.Z)))
	rhs = f.Add(rhs, f.Mul(p.X, zz))
	return lhs.Equal(rhs)
}

// Same reports whether both curves have the same field and coefficient.
func (c *Curve) Same(d *Curve) bool {
	return c.F.Equal(d.F) && c.A.Equal(d.A)
}
