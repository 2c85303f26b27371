package field

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrModulus       = errors.New("field: modulus must be a prime congruent to 3 mod 4")
	ErrNotInvertible = errors.New("field: zero is not invertible")
	ErrNotSquare     = errors.New("field: element is not a square")
	ErrEncoding      = errors.New("field: invalid encoding")
)

var (
	one   = big.NewInt(1)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// Field describes GF(p^2) = GF(p)[i]/(i^2+1) for a prime p = 3 mod 4.
// A Field is immutable after construction and safe for concurrent use.
type Field struct {
	p       *big.Int
	byteLen int

	// (p-3)/4 and (p-1)/2, used by Sqrt.
	sqrtExp *big.Int
	halfExp *big.Int
}

// New returns the quadratic extension of GF(p).
func New(p *big.Int) (*Field, error) {
	if p == nil || p.Sign() <= 0 || p.Bit(0) == 0 {
		return nil, ErrModulus
	}
	if new(big.Int).Mod(p, four).Cmp(three) != 0 {
		return nil, ErrModulus
	}
	if !p.ProbablyPrime(16) {
		return nil, ErrModulus
	}

	f := &Field{
		p:       new(big.Int).Set(p),
		byteLen: (p.BitLen() + 7) / 8,
	}
	f.sqrtExp = new(big.Int).Rsh(new(big.Int).Sub(p, three), 2)
	f.halfExp = new(big.Int).Rsh(new(big.Int).Sub(p, one), 1)
	return f, nil
}

// NewFromHex parses a big-endian hexadecimal modulus (optional 0x prefix).
func NewFromHex(s string) (*Field, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	p, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("%w: bad hex modulus", ErrModulus)
	}
	return New(p)
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.p)
}

// ByteLen is the number of bytes of one GF(p) coordinate.
func (f *Field) ByteLen() int {
	return f.byteLen
}

// ElementLen is the number of bytes of one encoded GF(p^2) element.
func (f *Field) ElementLen() int {
	return 2 * f.byteLen
}

// Equal reports whether both fields share the same modulus.
func (f *Field) Equal(g *Field) bool {
	if f == g {
		return true
	}
	return f != nil && g != nil && f.p.Cmp(g.p) == 0
}

func (f *Field) reduce(x *big.Int) *big.Int {
	return x.Mod(x, f.p)
}
