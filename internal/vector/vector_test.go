package vector

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-theta-isogeny/internal/chain"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/montgomery"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/product"
)

func TestLoadFormats(t *testing.T) {
	y, err := Load("../../testdata/small/split-21.yaml")
	require.NoError(t, err)
	tm, err := Load("../../testdata/small/split-21.toml")
	require.NoError(t, err)

	assert.Equal(t, "small-split-21", y.Name)
	assert.Equal(t, "small-split-21-toml", tm.Name)
	tm.Name = y.Name
	assert.Equal(t, y, tm)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	json := filepath.Join(dir, "v.json")
	require.NoError(t, os.WriteFile(json, []byte("{}"), 0o600))
	_, err = Load(json)
	assert.ErrorContains(t, err, "unsupported vector format")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("n: [1"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestCase(t *testing.T) {
	v, err := Load("../../testdata/small/split-21.yaml")
	require.NoError(t, err)
	c, err := v.Case()
	require.NoError(t, err)

	assert.Equal(t, 2, c.Input.N)
	assert.Len(t, c.Input.Aux, 2)
	assert.Len(t, c.WantImages, 2)
	assert.NoError(t, c.WantError)
	assert.True(t, c.Product.IsOnProduct(c.Input.K1))
	assert.True(t, c.Product.IsOnProduct(c.Input.K2))

	t.Run("expected error", func(t *testing.T) {
		v, err := Load("../../testdata/small/degenerate.yaml")
		require.NoError(t, err)
		c, err := v.Case()
		require.NoError(t, err)
		assert.ErrorIs(t, c.WantError, chain.ErrDegenerateStep)
		assert.Error(t, c.Check(&chain.Result{}))
	})

	t.Run("unknown error name", func(t *testing.T) {
		w := *v
		w.Expected.Error = "bogus"
		_, err := w.Case()
		assert.ErrorContains(t, err, "unknown expected error")
	})

	t.Run("point off the curve", func(t *testing.T) {
		w := *v
		w.Kernel1.P1.Y = "01000000"
		_, err := w.Case()
		assert.ErrorContains(t, err, "kernel1")
	})

	t.Run("bad hex", func(t *testing.T) {
		w := *v
		w.A1 = "zz"
		_, err := w.Case()
		assert.ErrorContains(t, err, "a1")
	})
}

func TestCheck(t *testing.T) {
	v, err := Load("../../testdata/small/split-21.yaml")
	require.NoError(t, err)
	c, err := v.Case()
	require.NoError(t, err)

	e1, err := montgomery.NewCurve(c.Field, c.WantA1)
	require.NoError(t, err)
	e2, err := montgomery.NewCurve(c.Field, c.WantA2)
	require.NoError(t, err)
	codomain, err := product.New(e1, e2)
	require.NoError(t, err)

	images := make([]product.XCouplePoint, len(c.WantImages))
	for i, xs := range c.WantImages {
		images[i] = product.XCouplePoint{P1: e1.NewXPoint(*xs[0]), P2: e2.NewXPoint(*xs[1])}
	}
	res := &chain.Result{Product: codomain, Images: images}
	require.NoError(t, c.Check(res))

	t.Run("swapped curves", func(t *testing.T) {
		swapped, err := product.New(e2, e1)
		require.NoError(t, err)
		assert.ErrorContains(t, c.Check(&chain.Result{Product: swapped, Images: images}), "a1")
	})

	t.Run("missing image", func(t *testing.T) {
		assert.ErrorContains(t, c.Check(&chain.Result{Product: codomain, Images: images[:1]}), "images")
	})

	t.Run("wrong image", func(t *testing.T) {
		wrong := append([]product.XCouplePoint(nil), images...)
		wrong[1].P2 = e2.NewXPoint(c.Field.FromInt(5))
		assert.ErrorContains(t, c.Check(&chain.Result{Product: codomain, Images: wrong}), "image 1 factor 2")
	})

	t.Run("identity", func(t *testing.T) {
		d := *c
		d.WantImages = [][2]*field.Element{{nil, c.WantImages[0][1]}}
		id := []product.XCouplePoint{{P1: e1.Identity().XZ(), P2: images[0].P2}}
		assert.NoError(t, d.Check(&chain.Result{Product: codomain, Images: id}))
		assert.ErrorContains(t, d.Check(&chain.Result{Product: codomain, Images: images[:1]}), "identity")
	})
}

func TestParseJSON(t *testing.T) {
	y, err := Load("../../testdata/small/split-21.yaml")
	require.NoError(t, err)
	raw, err := json.Marshal(y)
	require.NoError(t, err)

	j, err := Parse(raw, "json")
	require.NoError(t, err)
	assert.Equal(t, y, j)

	_, err = Parse(raw, ".ini")
	assert.ErrorContains(t, err, "unsupported")
}

func TestFromResult(t *testing.T) {
	v, err := Load("../../testdata/small/split-20.yaml")
	require.NoError(t, err)
	c, err := v.Case()
	require.NoError(t, err)

	res, err := chain.Run(context.Background(), c.Input)
	require.NoError(t, err)
	exp, err := FromResult(res)
	require.NoError(t, err)
	assert.Equal(t, v.Expected, exp)

	id, err := EncodeImages(res.Product, []product.XCouplePoint{res.Product.Identity().XZ()})
	require.NoError(t, err)
	assert.Equal(t, []Image{{X1: Identity, X2: Identity}}, id)
}

func TestNoExpectation(t *testing.T) {
	v, err := Load("../../testdata/small/split-21.yaml")
	require.NoError(t, err)
	v.Expected = Expected{}
	c, err := v.Case()
	require.NoError(t, err)
	assert.NoError(t, c.WantError)

	res, err := chain.Run(context.Background(), c.Input)
	require.NoError(t, err)
	assert.ErrorContains(t, c.Check(res), "no expected result")
}
