// Package theta implements (2,2)-isogenies between abelian surfaces in
// level-2 theta coordinates: gluing from an elliptic product, generic
// steps between theta structures, and splitting back into a product.
package theta

import (
	"errors"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
)

var (
	// ErrMalformedKernel reports kernel points whose theta coordinates do
	// not have the vanishing pattern of an 8-torsion point above a
	// maximal isotropic 2-torsion kernel.
	ErrMalformedKernel = errors.New("theta: malformed kernel")

	// ErrDegenerate reports a zero where the formulas divide.
	ErrDegenerate = errors.New("theta: vanishing theta coordinate")

	// ErrNotProduct reports a codomain that does not split as E1 x E2.
	ErrNotProduct = errors.New("theta: codomain is not an elliptic product")
)

// Point is a projective level-2 theta point (x : y : z : t).
type Point [4]field.Element

// Hadamard returns (x+y+z+t, x-y+z-t, x+y-z-t, x-y-z+t).
func Hadamard(f *field.Field, p Point) Point {
	s01 := f.Add(p[0], p[1])
	d01 := f.Sub(p[0], p[1])
	s23 := f.Add(p[2], p[3])
	d23 := f.Sub(p[2], p[3])
	return Point{
		f.Add(s01, s23),
		f.Add(d01, d23),
		f.Sub(s01, s23),
		f.Sub(d01, d23),
	}
}

// Squared returns H(x^2, y^2, z^2, t^2), the squared dual coordinates.
func Squared(f *field.Field, p Point) Point {
	return Hadamard(f, Point{f.Sqr(p[0]), f.Sqr(p[1]), f.Sqr(p[2]), f.Sqr(p[3])})
}

// Scale multiplies coordinatewise.
func Scale(f *field.Field, p, s Point) Point {
	return Point{f.Mul(p[0], s[0]), f.Mul(p[1], s[1]), f.Mul(p[2], s[2]), f.Mul(p[3], s[3])}
}

// Equal compares two projective points.
func Equal(f *field.Field, p, q Point) bool {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if !f.Mul(p[i], q[j]).Equal(f.Mul(p[j], q[i])) {
				return false
			}
		}
	}
	return !p.IsZero() && !q.IsZero()
}

// IsZero reports the invalid all-zero vector.
func (p Point) IsZero() bool {
	return p[0].IsZero() && p[1].IsZero() && p[2].IsZero() && p[3].IsZero()
}

// ZeroMask has bit i set when coordinate i vanishes.
func (p Point) ZeroMask() uint8 {
	var m uint8
	for i := range p {
		if p[i].IsZero() {
			m |= 1 << i
		}
	}
	return m
}
