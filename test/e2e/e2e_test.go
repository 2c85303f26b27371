package e2e

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/strategy"
	"github.com/smallyu/go-theta-isogeny/internal/vector"
	"github.com/smallyu/go-theta-isogeny/pkg/isogeny"
)

func load(t *testing.T, path string) *vector.Case {
	t.Helper()
	v, err := vector.Load(path)
	require.NoError(t, err)
	c, err := v.Case()
	require.NoError(t, err)
	return c
}

// checkChain evaluates c with the vector's strategy and with the optimal
// one, checks both against the expected codomain and lifts every image
// back onto the codomain.
func checkChain(t *testing.T, c *vector.Case) {
	in := c.Input
	res, err := isogeny.ComputeChain(in.Product, in.K1, in.K2, in.Aux, in.N, in.Strategy, in.Flags, isogeny.WithKernelImages(true))
	require.NoError(t, err)
	require.NoError(t, c.Check(res))

	for i, img := range res.Images {
		p, err := res.Product.LiftX(img)
		require.NoError(t, err, "image %d", i)
		assert.True(t, res.Product.IsOnProduct(p))
	}
	for _, img := range res.KernelImages {
		q := res.Product.XDouble(res.Product.XDouble(img))
		assert.True(t, q.P1.IsIdentity() && q.P2.IsIdentity())
	}

	plan, err := isogeny.OptimalStrategy(in.N)
	require.NoError(t, err)
	res, err = isogeny.ComputeChain(in.Product, in.K1, in.K2, in.Aux, in.N, plan.Doubles, in.Flags, isogeny.WithInverseFreeSteps(plan.InverseFree))
	require.NoError(t, err)
	assert.NoError(t, c.Check(res))
}

// randomStrategy splits every subtree at a uniformly chosen point.
func randomStrategy(rng *rand.Rand, n int) []int {
	out := make([]int, 0, n)
	var rec func(h int)
	rec = func(h int) {
		if h <= 1 {
			return
		}
		d := 1 + rng.Intn(h-1)
		out = append(out, d)
		rec(h - d)
		rec(d)
	}
	rec(n)
	return out
}

// checkStrategy evaluates c under doubles instead of the vector's strategy.
func checkStrategy(t *testing.T, c *vector.Case, doubles []int) {
	t.Helper()
	in := c.Input
	require.NoError(t, strategy.Validate(in.N, doubles))
	res, err := isogeny.ComputeChain(in.Product, in.K1, in.K2, in.Aux, in.N, doubles, in.Flags)
	require.NoError(t, err)
	assert.Equal(t, in.N, res.Steps)
	assert.NoError(t, c.Check(res))
}

func TestSmallChains(t *testing.T) {
	paths, err := filepath.Glob("../../testdata/small/split-*.yaml")
	require.NoError(t, err)
	paths = append(paths, "../../testdata/small/diagonal.yaml", "../../testdata/small/kani-5.yaml")
	for _, path := range paths {
		c := load(t, path)
		t.Run(c.Name, func(t *testing.T) {
			checkChain(t, c)
		})
	}
}

func TestRandomStrategies(t *testing.T) {
	c := load(t, "../../testdata/small/kani-5.yaml")
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 8; i++ {
		checkStrategy(t, c, randomStrategy(rng, c.Input.N))
	}
}

func TestFESTAChain(t *testing.T) {
	if testing.Short() {
		t.Skip("632-step chain over the FESTA prime")
	}
	c := load(t, "../../testdata/festa.yaml")
	checkChain(t, c)

	t.Run("balanced", func(t *testing.T) {
		checkStrategy(t, c, strategy.Balanced(c.Input.N))
	})

	rng := rand.New(rand.NewSource(632))
	for i := 0; i < 2; i++ {
		doubles := randomStrategy(rng, c.Input.N)
		t.Run(fmt.Sprintf("random %d", i), func(t *testing.T) {
			checkStrategy(t, c, doubles)
		})
	}

	t.Run("diagonal", func(t *testing.T) {
		checkChain(t, load(t, "../../testdata/diagonal.yaml"))
	})

	t.Run("flag flip", func(t *testing.T) {
		in := c.Input
		flags := append([]bool(nil), in.Flags...)
		flags[len(flags)-1] = !flags[len(flags)-1]
		_, err := isogeny.ComputeChainContext(context.Background(), in.Product, in.K1, in.K2, in.Aux, in.N, in.Strategy, flags)
		require.ErrorIs(t, err, isogeny.ErrDegenerateStepMismatch)
	})
}
