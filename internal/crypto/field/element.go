package field

import (
	"fmt"
	"math/big"
)

// Element is a value re + im*i of GF(p^2). Elements are immutable: every
// operation allocates its result, so values may be copied and shared freely.
// The zero value is the field element 0.
type Element struct {
	re *big.Int
	im *big.Int
}

var zero = new(big.Int)

func (x Element) parts() (*big.Int, *big.Int) {
	re, im := x.re, x.im
	if re == nil {
		re = zero
	}
	if im == nil {
		im = zero
	}
	return re, im
}

// Re returns a copy of the real coordinate.
func (x Element) Re() *big.Int {
	re, _ := x.parts()
	return new(big.Int).Set(re)
}

// Im returns a copy of the imaginary coordinate.
func (x Element) Im() *big.Int {
	_, im := x.parts()
	return new(big.Int).Set(im)
}

func (x Element) String() string {
	re, im := x.parts()
	return fmt.Sprintf("%x + %x*i", re, im)
}

// Zero returns the additive identity.
func (f *Field) Zero() Element {
	return Element{re: new(big.Int), im: new(big.Int)}
}

// One returns the multiplicative identity.
func (f *Field) One() Element {
	return Element{re: big.NewInt(1), im: new(big.Int)}
}

// I returns the square root of -1 used to build the extension.
func (f *Field) I() Element {
	return Element{re: new(big.Int), im: big.NewInt(1)}
}

// FromInt maps a small signed integer into the field.
func (f *Field) FromInt(v int64) Element {
	return Element{re: f.reduce(big.NewInt(v)), im: new(big.Int)}
}

// FromGaussian maps re + im*i with small integer coordinates into the field.
func (f *Field) FromGaussian(re, im int64) Element {
	return Element{re: f.reduce(big.NewInt(re)), im: f.reduce(big.NewInt(im))}
}

// NewElement reduces both coordinates modulo p.
func (f *Field) NewElement(re, im *big.Int) Element {
	return Element{
		re: f.reduce(new(big.Int).Set(re)),
		im: f.reduce(new(big.Int).Set(im)),
	}
}

// Add returns x + y.
func (f *Field) Add(x, y Element) Element {
	a, b := x.parts()
	c, d := y.parts()
	return Element{
		re: f.reduce(new(big.Int).Add(a, c)),
		im: f.reduce(new(big.Int).Add(b, d)),
	}
}

// Sub returns x - y.
func (f *Field) Sub(x, y Element) Element {
	a, b := x.parts()
	c, d := y.parts()
	return Element{
		re: f.reduce(new(big.Int).Sub(a, c)),
		im: f.reduce(new(big.Int).Sub(b, d)),
	}
}

// Neg returns -x.
func (f *Field) Neg(x Element) Element {
	a, b := x.parts()
	return Element{
		re: f.reduce(new(big.Int).Neg(a)),
		im: f.reduce(new(big.Int).Neg(b)),
	}
}

// Mul uses the Karatsuba form (ac - bd) + ((a+b)(c+d) - ac - bd)i.
func (f *Field) Mul(x, y Element) Element {
	a, b := x.parts()
	c, d := y.parts()

	ac := new(big.Int).Mul(a, c)
	bd := new(big.Int).Mul(b, d)
	cross := new(big.Int).Mul(new(big.Int).Add(a, b), new(big.Int).Add(c, d))
	cross.Sub(cross, ac)
	cross.Sub(cross, bd)

	return Element{
		re: f.reduce(ac.Sub(ac, bd)),
		im: f.reduce(cross),
	}
}

// Sqr computes (a+b)(a-b) + 2ab*i.
func (f *Field) Sqr(x Element) Element {
	a, b := x.parts()

	re := new(big.Int).Mul(new(big.Int).Add(a, b), new(big.Int).Sub(a, b))
	im := new(big.Int).Mul(a, b)
	im.Lsh(im, 1)

	return Element{re: f.reduce(re), im: f.reduce(im)}
}

// MulInt multiplies by a small integer.
func (f *Field) MulInt(x Element, k int64) Element {
	a, b := x.parts()
	kk := big.NewInt(k)
	return Element{
		re: f.reduce(new(big.Int).Mul(a, kk)),
		im: f.reduce(new(big.Int).Mul(b, kk)),
	}
}

// Conj returns re - im*i.
func (f *Field) Conj(x Element) Element {
	a, b := x.parts()
	return Element{re: new(big.Int).Set(a), im: f.reduce(new(big.Int).Neg(b))}
}

// Norm returns re^2 + im^2 in GF(p).
func (f *Field) Norm(x Element) *big.Int {
	a, b := x.parts()
	n := new(big.Int).Mul(a, a)
	n.Add(n, new(big.Int).Mul(b, b))
	return f.reduce(n)
}

// Inv returns 1/x.
func (f *Field) Inv(x Element) (Element, error) {
	if x.IsZero() {
		return Element{}, ErrNotInvertible
	}
	a, b := x.parts()
	n := new(big.Int).ModInverse(f.Norm(x), f.p)
	return Element{
		re: f.reduce(new(big.Int).Mul(a, n)),
		im: f.reduce(new(big.Int).Mul(new(big.Int).Neg(b), n)),
	}, nil
}

// Div returns x/y.
func (f *Field) Div(x, y Element) (Element, error) {
	inv, err := f.Inv(y)
	if err != nil {
		return Element{}, err
	}
	return f.Mul(x, inv), nil
}

// BatchInv inverts every element with a single field inversion.
// It fails if any input is zero.
func (f *Field) BatchInv(xs ...Element) ([]Element, error) {
	if len(xs) == 0 {
		return nil, nil
	}

	// prefix[i] = xs[0] * ... * xs[i]
	prefix := make([]Element, len(xs))
	prefix[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		prefix[i] = f.Mul(prefix[i-1], xs[i])
	}

	acc, err := f.Inv(prefix[len(xs)-1])
	if err != nil {
		return nil, err
	}

	out := make([]Element, len(xs))
	for i := len(xs) - 1; i > 0; i-- {
		out[i] = f.Mul(acc, prefix[i-1])
		acc = f.Mul(acc, xs[i])
	}
	out[0] = acc
	return out, nil
}

// Exp computes x^e for a non-negative exponent.
func (f *Field) Exp(x Element, e *big.Int) Element {
	result := f.One()
	for i := e.BitLen() - 1; i >= 0; i-- {
		result = f.Sqr(result)
		if e.Bit(i) == 1 {
			result = f.Mul(result, x)
		}
	}
	return result
}

// IsZero reports whether both components are zero.
func (x Element) IsZero() bool {
	a, b := x.parts()
	return a.Sign() == 0 && b.Sign() == 0
}

// IsOne reports whether x = 1.
func (x Element) IsOne() bool {
	a, b := x.parts()
	return a.Cmp(one) == 0 && b.Sign() == 0
}

// Equal compares two reduced elements.
func (x Element) Equal(y Element) bool {
	a, b := x.parts()
	c, d := y.parts()
	return a.Cmp(c) == 0 && b.Cmp(d) == 0
}

// IsSquare reports whether x is a square in GF(p^2), which holds exactly
// when its norm is a square in GF(p).
func (f *Field) IsSquare(x Element) bool {
	n := f.Norm(x)
	if n.Sign() == 0 {
		return true
	}
	return big.Jacobi(n, f.p) == 1
}

// Sqrt returns a square root of x. The root is chosen deterministically.
func (f *Field) Sqrt(x Element) (Element, error) {
	if x.IsZero() {
		return f.Zero(), nil
	}
	if !f.IsSquare(x) {
		return Element{}, ErrNotSquare
	}

	// p = 3 mod 4: a1 = x^((p-3)/4), alpha = a1^2 x, x0 = a1 x.
	a1 := f.Exp(x, f.sqrtExp)
	alpha := f.Mul(f.Sqr(a1), x)
	x0 := f.Mul(a1, x)

	minusOne := f.FromInt(-1)
	if alpha.Equal(minusOne) {
		return f.Mul(f.I(), x0), nil
	}

	b := f.Exp(f.Add(f.One(), alpha), f.halfExp)
	return f.Mul(b, x0), nil
}
