package field

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2^4 * 3^3 - 1, small enough to enumerate.
const smallPrime = 431

func smallField(t testing.TB) *Field {
	f, err := New(big.NewInt(smallPrime))
	require.NoError(t, err)
	return f
}

func randomElement(f *Field, rng *rand.Rand) Element {
	re := new(big.Int).Rand(rng, f.p)
	im := new(big.Int).Rand(rng, f.p)
	return f.NewElement(re, im)
}

func TestNew(t *testing.T) {
	t.Run("valid modulus", func(t *testing.T) {
		f := smallField(t)
		assert.Equal(t, 2, f.ByteLen())
		assert.Equal(t, 4, f.ElementLen())
	})

	t.Run("rejects 1 mod 4", func(t *testing.T) {
		_, err := New(big.NewInt(433))
		assert.ErrorIs(t, err, ErrModulus)
	})

	t.Run("rejects composite", func(t *testing.T) {
		_, err := New(big.NewInt(15 * 29))
		assert.ErrorIs(t, err, ErrModulus)
	})

	t.Run("rejects even and nil", func(t *testing.T) {
		_, err := New(big.NewInt(1024))
		assert.ErrorIs(t, err, ErrModulus)
		_, err = New(nil)
		assert.ErrorIs(t, err, ErrModulus)
	})

	t.Run("hex", func(t *testing.T) {
		f, err := NewFromHex("0x1af")
		require.NoError(t, err)
		assert.Equal(t, int64(smallPrime), f.Modulus().Int64())

		_, err = NewFromHex("zz")
		assert.ErrorIs(t, err, ErrModulus)
	})
}

func TestArithmetic(t *testing.T) {
	f := smallField(t)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		x := randomElement(f, rng)
		y := randomElement(f, rng)
		z := randomElement(f, rng)

		assert.True(t, f.Add(x, y).Equal(f.Add(y, x)))
		assert.True(t, f.Mul(x, y).Equal(f.Mul(y, x)))
		assert.True(t, f.Mul(x, f.Add(y, z)).Equal(f.Add(f.Mul(x, y), f.Mul(x, z))))
		assert.True(t, f.Sqr(x).Equal(f.Mul(x, x)))
		assert.True(t, f.Sub(x, x).IsZero())
		assert.True(t, f.Add(x, f.Neg(x)).IsZero())
		assert.True(t, f.MulInt(x, 3).Equal(f.Add(x, f.Add(x, x))))

		if !x.IsZero() {
			inv, err := f.Inv(x)
			require.NoError(t, err)
			assert.True(t, f.Mul(x, inv).IsOne())
		}
	}

	t.Run("i squared", func(t *testing.T) {
		assert.True(t, f.Sqr(f.I()).Equal(f.FromInt(-1)))
	})

	t.Run("zero value", func(t *testing.T) {
		var z Element
		assert.True(t, z.IsZero())
		assert.True(t, f.Add(z, f.One()).IsOne())
	})

	t.Run("inverse of zero", func(t *testing.T) {
		_, err := f.Inv(f.Zero())
		assert.ErrorIs(t, err, ErrNotInvertible)
	})

	t.Run("conjugate norm", func(t *testing.T) {
		x := f.FromGaussian(5, 7)
		n := f.Mul(x, f.Conj(x))
		assert.True(t, n.Im().Sign() == 0)
		assert.Equal(t, f.Norm(x).Int64(), n.Re().Int64())
	})
}

func TestBatchInv(t *testing.T) {
	f := smallField(t)
	rng := rand.New(rand.NewSource(2))

	xs := make([]Element, 9)
	for i := range xs {
		for xs[i].IsZero() {
			xs[i] = randomElement(f, rng)
		}
	}

	invs, err := f.BatchInv(xs...)
	require.NoError(t, err)
	require.Len(t, invs, len(xs))
	for i := range xs {
		assert.True(t, f.Mul(xs[i], invs[i]).IsOne(), "element %d", i)
	}

	_, err = f.BatchInv(f.One(), f.Zero())
	assert.ErrorIs(t, err, ErrNotInvertible)

	out, err := f.BatchInv()
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestSqrt(t *testing.T) {
	f := smallField(t)
	rng := rand.New(rand.NewSource(3))

	squares, nonSquares := 0, 0
	for i := 0; i < 300; i++ {
		x := randomElement(f, rng)
		sq := f.Sqr(x)
		assert.True(t, f.IsSquare(sq))

		r, err := f.Sqrt(sq)
		require.NoError(t, err)
		assert.True(t, f.Sqr(r).Equal(sq))

		if f.IsSquare(x) {
			squares++
		} else {
			nonSquares++
			_, err := f.Sqrt(x)
			assert.ErrorIs(t, err, ErrNotSquare)
		}
	}

	// Roughly half of GF(p^2) is square.
	assert.Greater(t, squares, 50)
	assert.Greater(t, nonSquares, 50)
}

func TestEncoding(t *testing.T) {
	f := smallField(t)
	rng := rand.New(rand.NewSource(4))

	t.Run("round trip", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			x := randomElement(f, rng)
			b := f.Encode(x)
			require.Len(t, b, f.ElementLen())

			y, err := f.Decode(b)
			require.NoError(t, err)
			assert.True(t, x.Equal(y))
			assert.Equal(t, f.EncodeHex(x), f.EncodeHex(y))
		}
	})

	t.Run("little endian layout", func(t *testing.T) {
		// 0x0102 + 0x0003 i
		x := f.NewElement(big.NewInt(0x0102), big.NewInt(3))
		assert.Equal(t, "02010300", f.EncodeHex(x))
	})

	t.Run("rejects non canonical", func(t *testing.T) {
		// 0x01af = p
		_, err := f.DecodeHex("af010000")
		assert.ErrorIs(t, err, ErrEncoding)
	})

	t.Run("rejects bad length and hex", func(t *testing.T) {
		_, err := f.Decode([]byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrEncoding)
		_, err = f.DecodeHex("xyz0")
		assert.ErrorIs(t, err, ErrEncoding)
	})
}

func FuzzDecode(f *testing.F) {
	fld, err := New(big.NewInt(smallPrime))
	if err != nil {
		f.Fatal(err)
	}

	f.Add([]byte{0, 0, 0, 0})
	f.Add([]byte{0xae, 0x01, 0xae, 0x01})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})
	f.Add([]byte{1, 2})

	f.Fuzz(func(t *testing.T, data []byte) {
		x, err := fld.Decode(data)
		if err != nil {
			return
		}
		// Anything accepted must re-encode to the same bytes.
		out := fld.Encode(x)
		if string(out) != string(data) {
			t.Fatalf("round trip mismatch: %x != %x", out, data)
		}
	})
}
