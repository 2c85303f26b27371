package theta

import (
	"fmt"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
)

// Structure is a level-2 theta structure given by its theta-null point.
//
// The doubling constants are computed the first time Double is called. The
// last codomains of a chain may have vanishing null coordinates and are
// never doubled, so building a Structure never fails.
type Structure struct {
	f    *field.Field
	null Point

	ready   bool
	prepErr error
	// y0, z0, t0 = a/b, a/c, a/d; dual = AA/BB, AA/CC, AA/DD.
	y0, z0, t0 field.Element
	dual       [3]field.Element
}

// NewStructure wraps a theta-null point. Doubling constants are computed
// on first use.
func NewStructure(f *field.Field, null Point) *Structure {
	return &Structure{f: f, null: null}
}

// Field returns the base field.
func (s *Structure) Field() *field.Field {
	return s.f
}

// Null returns the theta-null point.
func (s *Structure) Null() Point {
	return s.null
}

func (s *Structure) prepare() error {
	if s.ready {
		return s.prepErr
	}
	s.ready = true

	f := s.f
	sq := Squared(f, s.null)
	if s.null[0].IsZero() || sq[0].IsZero() {
		s.prepErr = fmt.Errorf("%w: doubling constants of null %v", ErrDegenerate, s.null.ZeroMask())
		return s.prepErr
	}
	inv, err := f.BatchInv(s.null[1], s.null[2], s.null[3], sq[1], sq[2], sq[3])
	if err != nil {
		s.prepErr = fmt.Errorf("%w: doubling constants: %v", ErrDegenerate, err)
		return s.prepErr
	}
	a, aa := s.null[0], sq[0]
	s.y0 = f.Mul(a, inv[0])
	s.z0 = f.Mul(a, inv[1])
	s.t0 = f.Mul(a, inv[2])
	s.dual = [3]field.Element{f.Mul(aa, inv[3]), f.Mul(aa, inv[4]), f.Mul(aa, inv[5])}
	return nil
}

// Double computes [2]p.
func (s *Structure) Double(p Point) (Point, error) {
	if err := s.prepare(); err != nil {
		return Point{}, err
	}
	f := s.f
	sq := Squared(f, p)
	sq = Point{
		f.Sqr(sq[0]),
		f.Mul(s.dual[0], f.Sqr(sq[1])),
		f.Mul(s.dual[1], f.Sqr(sq[2])),
		f.Mul(s.dual[2], f.Sqr(sq[3])),
	}
	r := Hadamard(f, sq)
	return Point{r[0], f.Mul(s.y0, r[1]), f.Mul(s.z0, r[2]), f.Mul(s.t0, r[3])}, nil
}

// DoubleIter computes [2^k]p.
func (s *Structure) DoubleIter(p Point, k int) (Point, error) {
	var err error
	for i := 0; i < k; i++ {
		if p, err = s.Double(p); err != nil {
			return Point{}, err
		}
	}
	return p, nil
}
