package product

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/montgomery"
)

func testProduct(t *testing.T) *EllipticProduct {
	f, err := field.New(big.NewInt(431))
	require.NoError(t, err)
	e1, err := montgomery.NewCurve(f, f.FromInt(6))
	require.NoError(t, err)
	e2, err := montgomery.NewCurve(f, f.FromGaussian(10, 3))
	require.NoError(t, err)
	e, err := New(e1, e2)
	require.NoError(t, err)
	return e
}

func liftFirst(t *testing.T, c *montgomery.Curve, start int64) montgomery.Point {
	for x := start; x < start+200; x++ {
		xe := c.F.FromGaussian(x, 2)
		if c.HasPointWithX(xe) {
			p, err := c.LiftX(xe)
			require.NoError(t, err)
			return p
		}
	}
	t.Fatalf("no point found from %d", start)
	return montgomery.Point{}
}

func TestNew(t *testing.T) {
	e := testProduct(t)
	assert.Equal(t, 2, e.Field().ByteLen())

	g, err := field.New(big.NewInt(419))
	require.NoError(t, err)
	other, err := montgomery.NewCurve(g, g.FromInt(6))
	require.NoError(t, err)

	_, err = New(e.E1, other)
	assert.ErrorIs(t, err, ErrFieldMismatch)

	_, err = New(nil, other)
	assert.Error(t, err)
}

func TestCoupleArithmetic(t *testing.T) {
	e := testProduct(t)

	p := CouplePoint{P1: liftFirst(t, e.E1, 3), P2: liftFirst(t, e.E2, 3)}
	q := CouplePoint{P1: liftFirst(t, e.E1, 50), P2: liftFirst(t, e.E2, 50)}
	require.True(t, e.IsOnProduct(p))
	require.True(t, e.IsOnProduct(q))

	t.Run("componentwise doubling", func(t *testing.T) {
		d := e.Double(p)
		assert.True(t, e.E1.Equal(d.P1, e.E1.Double(p.P1)))
		assert.True(t, e.E2.Equal(d.P2, e.E2.Double(p.P2)))
		assert.True(t, e.Equal(e.DoubleIter(p, 2), e.Double(e.Double(p))))
		assert.True(t, e.Equal(e.Add(p, p), d))
	})

	t.Run("group law", func(t *testing.T) {
		assert.True(t, e.Equal(e.Sub(e.Add(p, q), q), p))
		assert.True(t, e.IsIdentity(e.Add(p, e.Neg(p))))
		assert.True(t, e.Equal(e.Add(e.Identity(), q), q))
	})

	t.Run("kummer projection", func(t *testing.T) {
		assert.True(t, e.XEqual(e.XDouble(p.XZ()), e.Double(p).XZ()))
		assert.True(t, e.XEqual(p.XZ(), e.Neg(p).XZ()))

		lifted, err := e.LiftX(p.XZ())
		require.NoError(t, err)
		assert.True(t, e.IsOnProduct(lifted))
		assert.True(t, e.XEqual(lifted.XZ(), p.XZ()))

		id, err := e.LiftX(e.Identity().XZ())
		require.NoError(t, err)
		assert.True(t, e.IsIdentity(id))
	})

	t.Run("affine constructor", func(t *testing.T) {
		x1, y1, err := e.E1.Affine(p.P1)
		require.NoError(t, err)
		x2, y2, err := e.E2.Affine(p.P2)
		require.NoError(t, err)

		r, err := e.NewCouplePoint(x1, y1, x2, y2)
		require.NoError(t, err)
		assert.True(t, e.Equal(r, p))

		_, err = e.NewCouplePoint(x1, y1, x1, y1)
		assert.ErrorIs(t, err, montgomery.ErrNotOnCurve)
	})
}

func TestOrder2Exponent(t *testing.T) {
	e := testProduct(t)

	// (1, y) lies above (0, 0): order 4 on each factor.
	p4, err := e.E1.LiftX(e.Field().One())
	require.NoError(t, err)
	s2, err := e.E2.NewPoint(e.Field().Zero(), e.Field().Zero())
	require.NoError(t, err)

	k, err := e.Order2Exponent(CouplePoint{P1: p4, P2: s2}, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, k)

	k, err = e.Order2Exponent(CouplePoint{P1: e.E1.Identity(), P2: s2}, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, k)

	_, err = e.Order2Exponent(CouplePoint{P1: p4, P2: s2}, 1)
	assert.ErrorIs(t, err, montgomery.ErrOrder)
}
