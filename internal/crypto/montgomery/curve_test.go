package montgomery

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
)

func testCurve(t *testing.T, a int64) *Curve {
	f, err := field.New(big.NewInt(431))
	require.NoError(t, err)
	c, err := NewCurve(f, f.FromInt(a))
	require.NoError(t, err)
	return c
}

// somePoints lifts the first few abscissas that land on the curve.
func somePoints(t *testing.T, c *Curve, n int) []Point {
	var pts []Point
	for x := int64(2); len(pts) < n && x < 400; x++ {
		xe := c.F.FromGaussian(x, 1)
		if !c.HasPointWithX(xe) {
			continue
		}
		p, err := c.LiftX(xe)
		require.NoError(t, err)
		pts = append(pts, p)
	}
	require.Len(t, pts, n)
	return pts
}

func TestNewCurve(t *testing.T) {
	f, err := field.New(big.NewInt(431))
	require.NoError(t, err)

	_, err = NewCurve(f, f.FromInt(2))
	assert.ErrorIs(t, err, ErrSingular)
	_, err = NewCurve(f, f.FromInt(-2))
	assert.ErrorIs(t, err, ErrSingular)

	c, err := NewCurve(f, f.Zero())
	require.NoError(t, err)
	assert.True(t, c.JInvariant().Equal(f.FromInt(1728)))
}

func TestGroupLaw(t *testing.T) {
	c := testCurve(t, 6)
	pts := somePoints(t, c, 4)

	for i, p := range pts {
		assert.True(t, c.IsOnCurve(p), "point %d", i)
		assert.True(t, c.Equal(c.Double(p), c.Add(p, p)), "2P = P+P for %d", i)
		assert.True(t, c.IsOnCurve(c.Double(p)))

		q := pts[(i+1)%len(pts)]
		sum := c.Add(p, q)
		assert.True(t, c.IsOnCurve(sum))
		assert.True(t, c.Equal(c.Add(q, p), sum), "commutativity")
		assert.True(t, c.Equal(c.Sub(sum, q), p), "(P+Q)-Q = P")
		assert.True(t, c.Add(p, c.Neg(p)).IsIdentity())

		r := pts[(i+2)%len(pts)]
		assert.True(t, c.Equal(c.Add(c.Add(p, q), r), c.Add(p, c.Add(q, r))), "associativity")
	}

	t.Run("identity", func(t *testing.T) {
		o := c.Identity()
		p := pts[0]
		assert.True(t, c.IsOnCurve(o))
		assert.True(t, c.Equal(c.Add(o, p), p))
		assert.True(t, c.Equal(c.Add(p, o), p))
		assert.True(t, c.Double(o).IsIdentity())

		_, _, err := c.Affine(o)
		assert.ErrorIs(t, err, ErrIdentity)
	})

	t.Run("two torsion", func(t *testing.T) {
		s, err := c.NewPoint(c.F.Zero(), c.F.Zero())
		require.NoError(t, err)
		assert.True(t, c.Double(s).IsIdentity())

		e, err := c.Order2Exponent(s, 4)
		require.NoError(t, err)
		assert.Equal(t, 1, e)
	})

	t.Run("scalar mult", func(t *testing.T) {
		p := pts[1]
		assert.True(t, c.Equal(c.ScalarMult(p, 5), c.Add(c.ScalarMult(p, 2), c.ScalarMult(p, 3))))
		assert.True(t, c.Equal(c.ScalarMult(p, 8), c.DoubleIter(p, 3)))
		assert.True(t, c.ScalarMult(p, 0).IsIdentity())
	})

	t.Run("affine round trip", func(t *testing.T) {
		p := c.Double(pts[2])
		x, y, err := c.Affine(p)
		require.NoError(t, err)
		q, err := c.NewPoint(x, y)
		require.NoError(t, err)
		assert.True(t, c.Equal(p, q))
	})

	t.Run("rejects point off the curve", func(t *testing.T) {
		_, err := c.NewPoint(c.F.FromInt(1), c.F.FromInt(1))
		assert.ErrorIs(t, err, ErrNotOnCurve)
	})
}

func TestOrder2Exponent(t *testing.T) {
	c := testCurve(t, 6)

	// x = 1 gives a point above (0,0) since x([2]P) = (x^2-1)^2 / 4x(...).
	p, err := c.LiftX(c.F.One())
	require.NoError(t, err)

	e, err := c.Order2Exponent(p, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, e)

	_, err = c.Order2Exponent(p, 1)
	assert.ErrorIs(t, err, ErrOrder)

	e, err = c.Order2Exponent(c.Identity(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, e)
}

func TestXOnly(t *testing.T) {
	c := testCurve(t, 6)
	for _, p := range somePoints(t, c, 3) {
		xp := p.XZ()
		assert.True(t, c.XEqual(c.XDouble(xp), c.Double(p).XZ()))
		assert.True(t, c.XEqual(c.XDoubleIter(xp, 3), c.DoubleIter(p, 3).XZ()))
		assert.True(t, c.XEqual(xp, c.Neg(p).XZ()))

		x, err := c.AffineX(xp)
		require.NoError(t, err)
		px, _, err := c.Affine(p)
		require.NoError(t, err)
		assert.True(t, x.Equal(px))
	}

	o := c.Identity().XZ()
	assert.True(t, o.IsIdentity())
	assert.True(t, c.XDouble(o).IsIdentity())
	_, err := c.AffineX(o)
	assert.ErrorIs(t, err, ErrIdentity)
}
